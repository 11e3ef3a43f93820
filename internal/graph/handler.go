// ABOUTME: HTTP handler that executes GraphQL requests against the schema
// ABOUTME: Accepts JSON POST bodies and GET query strings, always answering with {data, errors}

package graph

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	graphql "github.com/graph-gophers/graphql-go"
)

// maxRequestBytes bounds the size of a GraphQL request body.
const maxRequestBytes = 1 << 20

// Request is a GraphQL-over-HTTP request. Token is accepted for compatibility
// with clients that send the credential in the body; it is consumed by the
// auth middleware, not here.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Token         string                 `json:"token,omitempty"`
}

// Handler serves a GraphQL schema over HTTP.
type Handler struct {
	schema *graphql.Schema
	logger *slog.Logger
}

// NewHandler creates a handler for schema.
func NewHandler(schema *graphql.Schema, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		schema: schema,
		logger: logger.With("component", "graphql"),
	}
}

// ServeHTTP executes one GraphQL request. Execution errors are reported in the
// body with status 200; only malformed requests get a 4xx status.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	var err error

	switch r.Method {
	case http.MethodGet:
		req, err = requestFromQuery(r)
	case http.MethodPost:
		req, err = requestFromBody(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeRequestError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err != nil {
		writeRequestError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Query == "" {
		writeRequestError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp := h.schema.Exec(r.Context(), req.Query, req.OperationName, req.Variables)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func requestFromQuery(r *http.Request) (Request, error) {
	q := r.URL.Query()
	req := Request{
		Query:         q.Get("query"),
		OperationName: q.Get("operationName"),
	}
	if vars := q.Get("variables"); vars != "" {
		if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
			return Request{}, errors.New("variables must be a JSON object")
		}
	}
	return req, nil
}

func requestFromBody(w http.ResponseWriter, r *http.Request) (Request, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return Request{}, errors.New("content type must be application/json")
	}

	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return Request{}, errors.New("request body too large")
		}
		if errors.Is(err, io.EOF) {
			return Request{}, errors.New("request body is empty")
		}
		return Request{}, errors.New("request body is not valid JSON")
	}
	return req, nil
}

type requestError struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func writeRequestError(w http.ResponseWriter, status int, message string) {
	var body requestError
	body.Errors = append(body.Errors, struct {
		Message string `json:"message"`
	}{Message: message})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
