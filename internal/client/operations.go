// ABOUTME: Typed wrappers for each API operation used by the command-line client
// ABOUTME: Defines the result shapes and the GraphQL documents that fetch them

package client

import (
	"context"
)

// Reaction is a reply attached to a thought.
type Reaction struct {
	ID           string `json:"_id"`
	ReactionBody string `json:"reactionBody"`
	CreatedAt    string `json:"createdAt"`
	Username     string `json:"username"`
}

// Thought is a post with its reactions.
type Thought struct {
	ID            string     `json:"_id"`
	ThoughtText   string     `json:"thoughtText"`
	CreatedAt     string     `json:"createdAt"`
	Username      string     `json:"username"`
	ReactionCount int        `json:"reactionCount"`
	Reactions     []Reaction `json:"reactions"`
}

// Friend is the abbreviated user shown in friend lists.
type Friend struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// User is a profile with its thoughts and friends.
type User struct {
	ID          string    `json:"_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FriendCount int       `json:"friendCount"`
	Thoughts    []Thought `json:"thoughts"`
	Friends     []Friend  `json:"friends"`
}

// Auth is the result of sign-up and login.
type Auth struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

const reactionFields = `_id reactionBody createdAt username`

const thoughtFields = `_id thoughtText createdAt username reactionCount reactions { ` + reactionFields + ` }`

const userFields = `_id username email friendCount friends { _id username } thoughts { ` + thoughtFields + ` }`

const (
	addUserMutation = `mutation AddUser($username: String!, $email: String!, $password: String!) {
  addUser(username: $username, email: $email, password: $password) { token user { ` + userFields + ` } }
}`

	loginMutation = `mutation Login($email: String!, $password: String!) {
  login(email: $email, password: $password) { token user { ` + userFields + ` } }
}`

	addThoughtMutation = `mutation AddThought($thoughtText: String!) {
  addThought(thoughtText: $thoughtText) { ` + thoughtFields + ` }
}`

	addReactionMutation = `mutation AddReaction($thoughtId: ID!, $reactionBody: String!) {
  addReaction(thoughtId: $thoughtId, reactionBody: $reactionBody) { ` + thoughtFields + ` }
}`

	addFriendMutation = `mutation AddFriend($friendId: ID!) {
  addFriend(friendId: $friendId) { ` + userFields + ` }
}`

	meQuery = `query Me { me { ` + userFields + ` } }`

	userQuery = `query User($username: String!) { user(username: $username) { ` + userFields + ` } }`

	usersQuery = `query Users { users { ` + userFields + ` } }`

	thoughtsQuery = `query Thoughts($username: String) { thoughts(username: $username) { ` + thoughtFields + ` } }`

	thoughtQuery = `query Thought($id: ID!) { thought(_id: $id) { ` + thoughtFields + ` } }`
)

// Signup registers a new account and stores the returned credential on the client.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*Auth, error) {
	var out struct {
		AddUser Auth `json:"addUser"`
	}
	err := c.Do(ctx, addUserMutation, map[string]any{
		"username": username,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.AddUser.Token
	return &out.AddUser, nil
}

// Login exchanges credentials for a token and stores it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*Auth, error) {
	var out struct {
		Login Auth `json:"login"`
	}
	err := c.Do(ctx, loginMutation, map[string]any{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Login.Token
	return &out.Login, nil
}

// Me returns the caller's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	var out struct {
		Me *User `json:"me"`
	}
	if err := c.Do(ctx, meQuery, nil, &out); err != nil {
		return nil, err
	}
	if out.Me == nil {
		return nil, ErrNoToken
	}
	return out.Me, nil
}

// User returns the profile for username, or nil if there is none.
func (c *Client) User(ctx context.Context, username string) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.Do(ctx, userQuery, map[string]any{"username": username}, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Users lists every profile.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	if err := c.Do(ctx, usersQuery, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// Thoughts lists thoughts newest first, optionally restricted to one author.
func (c *Client) Thoughts(ctx context.Context, username string) ([]Thought, error) {
	vars := map[string]any{}
	if username != "" {
		vars["username"] = username
	}
	var out struct {
		Thoughts []Thought `json:"thoughts"`
	}
	if err := c.Do(ctx, thoughtsQuery, vars, &out); err != nil {
		return nil, err
	}
	return out.Thoughts, nil
}

// Thought returns one thought by ID, or nil if there is none.
func (c *Client) Thought(ctx context.Context, id string) (*Thought, error) {
	var out struct {
		Thought *Thought `json:"thought"`
	}
	if err := c.Do(ctx, thoughtQuery, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}
	return out.Thought, nil
}

// AddThought posts a thought as the caller.
func (c *Client) AddThought(ctx context.Context, text string) (*Thought, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	var out struct {
		AddThought Thought `json:"addThought"`
	}
	if err := c.Do(ctx, addThoughtMutation, map[string]any{"thoughtText": text}, &out); err != nil {
		return nil, err
	}
	return &out.AddThought, nil
}

// AddReaction replies to a thought and returns the updated thought.
func (c *Client) AddReaction(ctx context.Context, thoughtID, body string) (*Thought, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	var out struct {
		AddReaction Thought `json:"addReaction"`
	}
	err := c.Do(ctx, addReactionMutation, map[string]any{
		"thoughtId":    thoughtID,
		"reactionBody": body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.AddReaction, nil
}

// AddFriend adds friendID to the caller's friends and returns the caller's profile.
func (c *Client) AddFriend(ctx context.Context, friendID string) (*User, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	var out struct {
		AddFriend User `json:"addFriend"`
	}
	if err := c.Do(ctx, addFriendMutation, map[string]any{"friendId": friendID}, &out); err != nil {
		return nil, err
	}
	return &out.AddFriend, nil
}
