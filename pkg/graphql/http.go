package graphql

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/metrics"
)

// GraphQLRequest represents a GraphQL HTTP request
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// GraphQLResponse represents a GraphQL HTTP response
type GraphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// GraphQLHandler handles GraphQL HTTP requests
type GraphQLHandler struct {
	schema   graphql.Schema
	maxDepth int
	logger   logging.Logger
	metrics  *metrics.Registry
}

// HandlerOption configures a GraphQLHandler
type HandlerOption func(*GraphQLHandler)

// WithMaxDepth overrides DefaultMaxDepth; zero disables the check
func WithMaxDepth(depth int) HandlerOption {
	return func(h *GraphQLHandler) {
		h.maxDepth = depth
	}
}

func WithHandlerLogger(logger logging.Logger) HandlerOption {
	return func(h *GraphQLHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Registry) HandlerOption {
	return func(h *GraphQLHandler) {
		h.metrics = m
	}
}

// NewGraphQLHandler creates a new GraphQL HTTP handler
func NewGraphQLHandler(schema graphql.Schema, opts ...HandlerOption) *GraphQLHandler {
	h := &GraphQLHandler{
		schema:   schema,
		maxDepth: DefaultMaxDepth,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *GraphQLHandler) writeJSON(w http.ResponseWriter, status int, resp GraphQLResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("failed to encode graphql response", logging.Error(err))
	}
}

func (h *GraphQLHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, GraphQLResponse{Errors: []GraphQLError{{Message: message}}})
}

// ServeHTTP handles HTTP requests for GraphQL queries. Only POST is
// accepted; CORS preflight is answered by the server middleware.
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		h.writeError(w, http.StatusBadRequest, "Missing query")
		return
	}

	result := Execute(r.Context(), h.schema, req, h.maxDepth)
	if h.metrics != nil {
		h.metrics.RecordGraphQL(result.HasErrors())
	}

	response := GraphQLResponse{
		Data: result.Data,
	}
	if result.HasErrors() {
		response.Errors = make([]GraphQLError, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = GraphQLError{
				Message:    err.Message,
				Extensions: err.Extensions,
			}
		}
	}

	h.writeJSON(w, http.StatusOK, response)
}
