// ABOUTME: HTTP middleware that resolves an optional caller identity from a credential
// ABOUTME: Looks in the JSON body, the query string, then the Authorization header; never rejects

package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
)

// maxTokenBodyBytes bounds how much of a request body is buffered to look for a token.
const maxTokenBodyBytes = 1 << 20

// Credential sources reported by Resolve.
const (
	SourceNone   = ""
	SourceBody   = "body"
	SourceQuery  = "query"
	SourceHeader = "header"
)

// Resolution is the outcome of resolving a request's credential.
// Identity is nil when no credential was found or it failed verification;
// Err records the verification failure and is never returned to the client.
type Resolution struct {
	Identity *Identity
	Source   string
	Err      error
}

// Resolve locates a candidate credential on the request and verifies it.
// A JSON request body is read and restored so later handlers can decode it again.
func Resolve(r *http.Request, verifier TokenVerifier) Resolution {
	token, source := extractToken(r)
	if token == "" {
		return Resolution{Source: SourceNone}
	}

	id, err := verifier.Verify(token)
	if err != nil {
		return Resolution{Source: source, Err: err}
	}
	return Resolution{Identity: &id, Source: source}
}

// extractToken checks the body "token" field, the "token" query parameter, and the
// Authorization header, in that order.
func extractToken(r *http.Request) (string, string) {
	if token := tokenFromBody(r); token != "" {
		return token, SourceBody
	}
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token, SourceQuery
	}
	if token := extractBearerToken(r.Header.Get("Authorization")); token != "" {
		return token, SourceHeader
	}
	return "", SourceNone
}

// extractBearerToken strips a literal "Bearer " prefix; a bare value is used as-is.
func extractBearerToken(authHeader string) string {
	token := strings.TrimSpace(authHeader)
	if token == "Bearer" {
		return ""
	}
	token = strings.TrimPrefix(token, "Bearer ")
	return strings.TrimSpace(token)
}

// tokenFromBody peeks at a JSON request body for a top-level "token" field.
func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Method != http.MethodPost {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return ""
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyBytes+1))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(buf))
	if err != nil || len(buf) > maxTokenBodyBytes {
		return ""
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(buf, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Token)
}

// OptionalAuthMiddleware attaches the caller's identity to the request context when a
// valid credential is present. Missing, malformed, and expired credentials all continue
// as anonymous; authorization is left to the resolvers.
func OptionalAuthMiddleware(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := Resolve(r, verifier)
			if res.Err != nil {
				logger.Debug("ignoring invalid credential", "source", res.Source, "error", res.Err)
			}
			if res.Identity == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), res.Identity)))
		})
	}
}
