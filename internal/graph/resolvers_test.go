// ABOUTME: Tests for GraphQL resolvers executed through the parsed schema
// ABOUTME: Covers the sign-up-to-friends scenario, error codes, nulls, and nested expansion

package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/deep-thoughts/internal/auth"
	"github.com/2389/deep-thoughts/internal/metrics"
	"github.com/2389/deep-thoughts/internal/social"
	"github.com/2389/deep-thoughts/internal/store"
)

var testSecret = []byte("graph-resolver-test-secret-32byt")

type testAPI struct {
	schema  *graphql.Schema
	tokens  *auth.TokenCodec
	metrics *metrics.Metrics
}

func newTestAPI(t *testing.T, st store.Store) *testAPI {
	t.Helper()

	tokens, err := auth.NewTokenCodec(auth.TokenConfig{Secret: testSecret})
	require.NoError(t, err)

	m := metrics.New()
	svc := social.NewService(social.Config{
		Store:      st,
		Tokens:     tokens,
		BcryptCost: bcrypt.MinCost,
		Metrics:    m,
	})
	schema, err := NewSchema(NewResolver(svc, m, nil))
	require.NoError(t, err)

	return &testAPI{schema: schema, tokens: tokens, metrics: m}
}

// exec runs query and decodes data into out when out is non-nil.
func (a *testAPI) exec(t *testing.T, ctx context.Context, query string, vars map[string]interface{}, out interface{}) *graphql.Response {
	t.Helper()
	resp := a.schema.Exec(ctx, query, "", vars)
	if out != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return resp
}

func (a *testAPI) as(t *testing.T, token string) context.Context {
	t.Helper()
	id, err := a.tokens.Verify(token)
	require.NoError(t, err)
	return auth.WithIdentity(context.Background(), &id)
}

type userJSON struct {
	ID          string        `json:"_id"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	FriendCount int           `json:"friendCount"`
	Thoughts    []thoughtJSON `json:"thoughts"`
	Friends     []userJSON    `json:"friends"`
}

type thoughtJSON struct {
	ID            string `json:"_id"`
	ThoughtText   string `json:"thoughtText"`
	ThoughtHTML   string `json:"thoughtHtml"`
	CreatedAt     string `json:"createdAt"`
	Username      string `json:"username"`
	ReactionCount int    `json:"reactionCount"`
	Reactions     []struct {
		ID           string `json:"_id"`
		ReactionBody string `json:"reactionBody"`
		Username     string `json:"username"`
		CreatedAt    string `json:"createdAt"`
	} `json:"reactions"`
}

const addUserMutation = `
	mutation($username: String!, $email: String!, $password: String!) {
		addUser(username: $username, email: $email, password: $password) {
			token
			user { _id username email friendCount }
		}
	}`

func (a *testAPI) signUp(t *testing.T, username string) (token string, id string) {
	t.Helper()
	var data struct {
		AddUser struct {
			Token string   `json:"token"`
			User  userJSON `json:"user"`
		} `json:"addUser"`
	}
	resp := a.exec(t, context.Background(), addUserMutation, map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "pw123",
	}, &data)
	require.Empty(t, resp.Errors)
	return data.AddUser.Token, data.AddUser.User.ID
}

func errorCode(t *testing.T, resp *graphql.Response) string {
	t.Helper()
	require.NotEmpty(t, resp.Errors)
	code, _ := resp.Errors[0].Extensions["code"].(string)
	return code
}

func TestNewSchema(t *testing.T) {
	api := newTestAPI(t, store.NewMockStore())
	assert.NotNil(t, api.schema)
	assert.Contains(t, SDL(), "addReaction(thoughtId: ID!, reactionBody: String!): Thought!")
}

func TestScenario_SignUpPostReactBefriend(t *testing.T) {
	api := newTestAPI(t, store.NewMockStore())

	aliceToken, aliceID := api.signUp(t, "alice")
	_, bobID := api.signUp(t, "bob")
	ctx := api.as(t, aliceToken)

	var me struct {
		Me userJSON `json:"me"`
	}
	resp := api.exec(t, ctx, `{ me { _id username email } }`, nil, &me)
	require.Empty(t, resp.Errors)
	assert.Equal(t, aliceID, me.Me.ID)
	assert.Equal(t, "alice@example.com", me.Me.Email)

	var posted struct {
		AddThought thoughtJSON `json:"addThought"`
	}
	resp = api.exec(t, ctx, `mutation { addThought(thoughtText: "hi") { _id thoughtText username reactionCount } }`, nil, &posted)
	require.Empty(t, resp.Errors)
	assert.Equal(t, "alice", posted.AddThought.Username)
	assert.Equal(t, 0, posted.AddThought.ReactionCount)

	var reacted struct {
		AddReaction thoughtJSON `json:"addReaction"`
	}
	resp = api.exec(t, ctx, `mutation($id: ID!) { addReaction(thoughtId: $id, reactionBody: "me too") { reactionCount reactions { reactionBody username } } }`,
		map[string]interface{}{"id": posted.AddThought.ID}, &reacted)
	require.Empty(t, resp.Errors)
	assert.Equal(t, 1, reacted.AddReaction.ReactionCount)
	assert.Equal(t, "me too", reacted.AddReaction.Reactions[0].ReactionBody)

	const befriend = `mutation($id: ID!) { addFriend(friendId: $id) { friendCount friends { username } } }`
	var friend struct {
		AddFriend userJSON `json:"addFriend"`
	}
	resp = api.exec(t, ctx, befriend, map[string]interface{}{"id": bobID}, &friend)
	require.Empty(t, resp.Errors)
	resp = api.exec(t, ctx, befriend, map[string]interface{}{"id": bobID}, &friend)
	require.Empty(t, resp.Errors)
	assert.Equal(t, 1, friend.AddFriend.FriendCount)
	require.Len(t, friend.AddFriend.Friends, 1)
	assert.Equal(t, "bob", friend.AddFriend.Friends[0].Username)

	assert.Equal(t, 2.0, testutil.ToFloat64(api.metrics.Operations.WithLabelValues("addFriend", CodeOK)))
}

func TestMutations_Unauthenticated(t *testing.T) {
	api := newTestAPI(t, store.NewMockStore())

	tests := []struct {
		name  string
		query string
	}{
		{"me", `{ me { username } }`},
		{"addThought", `mutation { addThought(thoughtText: "hi") { _id } }`},
		{"addReaction", `mutation { addReaction(thoughtId: "x", reactionBody: "hi") { _id } }`},
		{"addFriend", `mutation { addFriend(friendId: "x") { _id } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.exec(t, context.Background(), tt.query, nil, nil)
			assert.Equal(t, CodeUnauthenticated, errorCode(t, resp))
			assert.Equal(t, "you need to be logged in", resp.Errors[0].Message)
		})
	}
}

func TestLogin_SameErrorForWrongPasswordAndUnknownEmail(t *testing.T) {
	api := newTestAPI(t, store.NewMockStore())
	api.signUp(t, "alice")

	const login = `mutation($e: String!, $p: String!) { login(email: $e, password: $p) { token } }`
	wrong := api.exec(t, context.Background(), login, map[string]interface{}{"e": "alice@example.com", "p": "nope!"}, nil)
	unknown := api.exec(t, context.Background(), login, map[string]interface{}{"e": "ghost@example.com", "p": "pw123"}, nil)

	assert.Equal(t, CodeInvalidCredentials, errorCode(t, wrong))
	assert.Equal(t, CodeInvalidCredentials, errorCode(t, unknown))
	assert.Equal(t, wrong.Errors[0].Message, unknown.Errors[0].Message)

	var ok struct {
		Login struct {
			Token string   `json:"token"`
			User  userJSON `json:"user"`
		} `json:"login"`
	}
	resp := api.exec(t, context.Background(), `mutation { login(email: "alice@example.com", password: "pw123") { token user { username } } }`, nil, &ok)
	require.Empty(t, resp.Errors)
	assert.Equal(t, "alice", ok.Login.User.Username)
	id, err := api.tokens.Verify(ok.Login.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
}

func TestAddUser_ErrorCodes(t *testing.T) {
	api := newTestAPI(t, store.NewMockStore())
	api.signUp(t, "alice")

	dup := api.exec(t, context.Background(), addUserMutation, map[string]interface{}{
		"username": "alice", "email": "new@example.com", "password": "pw123",
	}, nil)
	assert.Equal(t, CodeDuplicateEntity, errorCode(t, dup))

	bad := api.exec(t, context.Background(), addUserMutation, map[string]interface{}{
		"username": "carol", "email": "carol@example.com", "password": "pw",
	}, nil)
	assert.Equal(t, CodeBadUserInput, errorCode(t, bad))
	assert.Contains(t, bad.Errors[0].Message, "password must be at least 5 characters")
}

func TestQueries_AbsentEntitiesAreNull(t *testing.T) {
	api := newTestAPI(t, store.NewMockStore())

	var data struct {
		Thought *thoughtJSON `json:"thought"`
		User    *userJSON    `json:"user"`
	}
	resp := api.exec(t, context.Background(), `{ thought(_id: "missing") { _id } user(username: "nobody") { _id } }`, nil, &data)
	require.Empty(t, resp.Errors)
	assert.Nil(t, data.Thought)
	assert.Nil(t, data.User)
}

func TestAddReaction_MissingThought(t *testing.T) {
	api := newTestAPI(t, store.NewMockStore())
	token, _ := api.signUp(t, "alice")

	resp := api.exec(t, api.as(t, token), `mutation { addReaction(thoughtId: "missing", reactionBody: "hi") { _id } }`, nil, nil)
	assert.Equal(t, CodeNotFound, errorCode(t, resp))
}

func TestThoughts_FilterAndFields(t *testing.T) {
	api := newTestAPI(t, store.NewMockStore())
	aliceToken, _ := api.signUp(t, "alice")
	bobToken, _ := api.signUp(t, "bob")

	api.exec(t, api.as(t, aliceToken), `mutation { addThought(thoughtText: "**bold** move") { _id } }`, nil, nil)
	api.exec(t, api.as(t, bobToken), `mutation { addThought(thoughtText: "bob here") { _id } }`, nil, nil)

	var data struct {
		Thoughts []thoughtJSON `json:"thoughts"`
	}
	resp := api.exec(t, context.Background(), `query($u: String) { thoughts(username: $u) { thoughtText thoughtHtml createdAt username } }`,
		map[string]interface{}{"u": "alice"}, &data)
	require.Empty(t, resp.Errors)
	require.Len(t, data.Thoughts, 1)
	assert.Equal(t, "<p><strong>bold</strong> move</p>\n", data.Thoughts[0].ThoughtHTML)
	assert.Contains(t, data.Thoughts[0].CreatedAt, " at ")

	resp = api.exec(t, context.Background(), `{ thoughts { username } }`, nil, &data)
	require.Empty(t, resp.Errors)
	assert.Len(t, data.Thoughts, 2)
}

func TestUser_NestedFriendsResolveLazily(t *testing.T) {
	api := newTestAPI(t, store.NewMockStore())
	aliceToken, _ := api.signUp(t, "alice")
	bobToken, bobID := api.signUp(t, "bob")
	_, carolID := api.signUp(t, "carol")

	befriend := `mutation($id: ID!) { addFriend(friendId: $id) { _id } }`
	api.exec(t, api.as(t, aliceToken), befriend, map[string]interface{}{"id": bobID}, nil)
	api.exec(t, api.as(t, bobToken), befriend, map[string]interface{}{"id": carolID}, nil)
	api.exec(t, api.as(t, bobToken), `mutation { addThought(thoughtText: "bob's thought") { _id } }`, nil, nil)

	var data struct {
		User userJSON `json:"user"`
	}
	resp := api.exec(t, context.Background(), `{
		user(username: "alice") {
			friends {
				username
				thoughts { thoughtText }
				friends { username }
			}
		}
	}`, nil, &data)
	require.Empty(t, resp.Errors)
	require.Len(t, data.User.Friends, 1)
	bob := data.User.Friends[0]
	assert.Equal(t, "bob", bob.Username)
	require.Len(t, bob.Thoughts, 1)
	assert.Equal(t, "bob's thought", bob.Thoughts[0].ThoughtText)
	require.Len(t, bob.Friends, 1)
	assert.Equal(t, "carol", bob.Friends[0].Username)
}

func TestUsers_NeverExposePasswords(t *testing.T) {
	api := newTestAPI(t, store.NewMockStore())
	api.signUp(t, "alice")

	resp := api.exec(t, context.Background(), `{ users { password } }`, nil, nil)
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0].Message, "password")
}

func TestQuery_DepthLimited(t *testing.T) {
	api := newTestAPI(t, store.NewMockStore())

	resp := api.exec(t, context.Background(), `{ users { friends { friends { friends { friends { friends { friends { friends { friends { friends { friends { username } } } } } } } } } } } }`, nil, nil)
	require.NotEmpty(t, resp.Errors)
}

type brokenStore struct {
	*store.MockStore
}

func (brokenStore) ListThoughts(context.Context, store.ThoughtFilter) ([]*store.Thought, error) {
	return nil, errors.New("connection reset by peer")
}

func TestInternalErrorsAreMasked(t *testing.T) {
	api := newTestAPI(t, brokenStore{store.NewMockStore()})

	resp := api.exec(t, context.Background(), `{ thoughts { _id } }`, nil, nil)
	assert.Equal(t, CodeInternal, errorCode(t, resp))
	assert.Equal(t, "internal error", resp.Errors[0].Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(api.metrics.Operations.WithLabelValues("thoughts", CodeInternal)))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{social.ErrUnauthenticated, CodeUnauthenticated},
		{social.ErrInvalidCredentials, CodeInvalidCredentials},
		{social.ErrNotFound, CodeNotFound},
		{social.ErrDuplicateEntity, CodeDuplicateEntity},
		{social.ErrInvalidInput, CodeBadUserInput},
		{errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, classify(tt.err))
		})
	}
}
