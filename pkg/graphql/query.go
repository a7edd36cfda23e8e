package graphql

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
)

// Execute runs req against schema. A positive maxDepth rejects deeper
// queries before any resolver runs.
func Execute(ctx context.Context, schema graphql.Schema, req GraphQLRequest, maxDepth int) *graphql.Result {
	if maxDepth > 0 {
		if err := ValidateQueryDepth(req.Query, maxDepth); err != nil {
			return &graphql.Result{
				Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)},
			}
		}
	}

	params := graphql.Params{
		Schema:        schema,
		RequestString: req.Query,
		OperationName: req.OperationName,
		Context:       ctx,
	}
	if len(req.Variables) > 0 {
		params.VariableValues = req.Variables
	}

	return graphql.Do(params)
}
