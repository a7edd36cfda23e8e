package graphql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// DefaultMaxDepth bounds selection nesting. The deepest legitimate query,
// e.g. { indicators { items { id } } }, has depth 3.
const DefaultMaxDepth = 5

// calculateQueryDepth calculates the maximum depth of a GraphQL query
func calculateQueryDepth(document *ast.Document) int {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, definition := range document.Definitions {
		if frag, ok := definition.(*ast.FragmentDefinition); ok && frag.Name != nil {
			fragments[frag.Name.Value] = frag
		}
	}

	maxDepth := 0
	for _, definition := range document.Definitions {
		if op, ok := definition.(*ast.OperationDefinition); ok {
			depth := selectionSetDepth(op.SelectionSet, 0, fragments, map[string]bool{})
			maxDepth = max(maxDepth, depth)
		}
	}
	return maxDepth
}

// selectionSetDepth returns the deepest level reached below selectionSet.
// visiting guards against fragment cycles, which validation rejects anyway.
func selectionSetDepth(selectionSet *ast.SelectionSet, currentDepth int, fragments map[string]*ast.FragmentDefinition, visiting map[string]bool) int {
	if selectionSet == nil || len(selectionSet.Selections) == 0 {
		return currentDepth
	}

	maxDepth := currentDepth
	for _, selection := range selectionSet.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			if sel.Name != nil && isIntrospectionField(sel.Name.Value) {
				continue
			}
			maxDepth = max(maxDepth, selectionSetDepth(sel.SelectionSet, currentDepth+1, fragments, visiting))

		case *ast.InlineFragment:
			maxDepth = max(maxDepth, selectionSetDepth(sel.SelectionSet, currentDepth, fragments, visiting))

		case *ast.FragmentSpread:
			if sel.Name == nil {
				continue
			}
			name := sel.Name.Value
			frag, ok := fragments[name]
			if !ok || visiting[name] {
				continue
			}
			visiting[name] = true
			maxDepth = max(maxDepth, selectionSetDepth(frag.SelectionSet, currentDepth, fragments, visiting))
			delete(visiting, name)
		}
	}

	return maxDepth
}

// isIntrospectionField checks if a field is an introspection field
func isIntrospectionField(fieldName string) bool {
	return strings.HasPrefix(fieldName, "__")
}

// ValidateQueryDepth parses query and rejects it when its selection depth
// exceeds maxDepth
func ValidateQueryDepth(query string, maxDepth int) error {
	document, err := parser.Parse(parser.ParseParams{
		Source: query,
	})
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}

	if queryDepth := calculateQueryDepth(document); queryDepth > maxDepth {
		return fmt.Errorf("query depth %d exceeds maximum allowed depth %d", queryDepth, maxDepth)
	}

	return nil
}
