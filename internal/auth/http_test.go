// ABOUTME: Tests for the optional identity middleware
// ABOUTME: Covers credential sources, precedence, body restoration, and silent failure

package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureIdentity runs the middleware and returns the identity seen by the next handler.
func captureIdentity(t *testing.T, codec *TokenCodec, req *http.Request) (*Identity, string, int) {
	t.Helper()

	var got *Identity
	var body string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
		if r.Body != nil {
			b, _ := io.ReadAll(r.Body)
			body = string(b)
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	OptionalAuthMiddleware(codec, nil)(handler).ServeHTTP(rec, req)
	return got, body, rec.Code
}

func TestOptionalAuthMiddleware_Sources(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Issue(alice)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  func() *http.Request
	}{
		{
			name: "bearer header",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ me { username } }"}`))
				r.Header.Set("Content-Type", "application/json")
				r.Header.Set("Authorization", "Bearer "+token)
				return r
			},
		},
		{
			name: "bare header",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/graphql", nil)
				r.Header.Set("Authorization", token)
				return r
			},
		},
		{
			name: "query string",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/graphql?token="+token, nil)
			},
		},
		{
			name: "json body",
			req: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ me { username } }","token":"`+token+`"}`))
				r.Header.Set("Content-Type", "application/json; charset=utf-8")
				return r
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, code := captureIdentity(t, codec, tt.req())
			assert.Equal(t, http.StatusOK, code)
			require.NotNil(t, got, "expected identity in context")
			assert.Equal(t, alice, *got)
		})
	}
}

func TestOptionalAuthMiddleware_BodyTakesPrecedence(t *testing.T) {
	codec := newTestCodec(t)
	bodyToken, _ := codec.Issue(alice)
	headerToken, _ := codec.Issue(Identity{Username: "bob", Email: "bob@x.com", ID: "user-456"})

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"token":"`+bodyToken+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+headerToken)

	got, _, _ := captureIdentity(t, codec, req)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
}

func TestOptionalAuthMiddleware_RestoresBody(t *testing.T) {
	codec := newTestCodec(t)
	payload := `{"query":"{ thoughts { _id } }"}`

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	_, body, _ := captureIdentity(t, codec, req)
	assert.Equal(t, payload, body)
}

func TestOptionalAuthMiddleware_InvalidCredentialIsAnonymous(t *testing.T) {
	codec := newTestCodec(t)

	expiredCodec := newTestCodec(t)
	expiredCodec.now = func() time.Time { return time.Now().Add(-5 * time.Hour) }
	expired, _ := expiredCodec.Issue(alice)

	for name, token := range map[string]string{
		"malformed": "not-a-jwt",
		"expired":   expired,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			got, _, code := captureIdentity(t, codec, req)
			assert.Equal(t, http.StatusOK, code, "middleware must never reject")
			assert.Nil(t, got)
		})
	}
}

func TestOptionalAuthMiddleware_NoCredential(t *testing.T) {
	codec := newTestCodec(t)
	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)

	got, _, code := captureIdentity(t, codec, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, got)
}

func TestResolve_ReportsFailure(t *testing.T) {
	codec := newTestCodec(t)
	req := httptest.NewRequest(http.MethodGet, "/graphql?token=garbage", nil)

	res := Resolve(req, codec)
	assert.Nil(t, res.Identity)
	assert.Equal(t, SourceQuery, res.Source)
	assert.ErrorIs(t, res.Err, ErrInvalidCredential)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: ""},
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "abc.def.ghi", want: "abc.def.ghi"},
		{header: "  Bearer   abc  ", want: "abc"},
		{header: "Bearer ", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractBearerToken(tt.header), "header %q", tt.header)
	}
}
