// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite or DynamoDB

package store

import (
	"context"
	"strings"
	"sync"
)

// MockStore is an in-memory Store implementation for testing.
// Values are copied on the way in and out so callers never alias stored state.
type MockStore struct {
	mu         sync.RWMutex
	users      map[string]*User    // keyed by user ID
	byUsername map[string]string   // username -> user ID
	byEmail    map[string]string   // lowercased email -> user ID
	thoughts   map[string]*Thought // keyed by thought ID
	userOrder  []string            // user IDs in insertion order

	// PingErr, when set, is returned by Ping.
	PingErr error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:      make(map[string]*User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
		thoughts:   make(map[string]*Thought),
	}
}

func copyUser(u *User) *User {
	c := *u
	c.ThoughtIDs = append([]string{}, u.ThoughtIDs...)
	c.FriendIDs = append([]string{}, u.FriendIDs...)
	return &c
}

func copyThought(t *Thought) *Thought {
	c := *t
	c.Reactions = append([]Reaction{}, t.Reactions...)
	return &c
}

// CreateUser stores a new user.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	emailKey := strings.ToLower(user.Email)
	if _, ok := m.users[user.ID]; ok {
		return ErrDuplicate
	}
	if _, ok := m.byUsername[user.Username]; ok {
		return ErrDuplicate
	}
	if _, ok := m.byEmail[emailKey]; ok {
		return ErrDuplicate
	}

	u := copyUser(user)
	m.users[u.ID] = u
	m.byUsername[u.Username] = u.ID
	m.byEmail[emailKey] = u.ID
	m.userOrder = append(m.userOrder, u.ID)
	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

// GetUserByUsername retrieves a user by username.
func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(m.users[id]), nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(m.users[id]), nil
}

// ListUsers returns all users in insertion order.
func (m *MockStore) ListUsers(ctx context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		out = append(out, copyUser(m.users[id]))
	}
	return out, nil
}

// GetUsers returns the users with the given IDs in the order requested.
func (m *MockStore) GetUsers(ctx context.Context, ids []string) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

// AddFriend adds friendID to the user's friend set.
func (m *MockStore) AddFriend(ctx context.Context, userID, friendID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m.users[friendID]; !ok {
		return ErrNotFound
	}
	if !containsID(u.FriendIDs, friendID) {
		u.FriendIDs = append(u.FriendIDs, friendID)
	}
	return nil
}

// AddThought stores the thought and links it to its owner.
func (m *MockStore) AddThought(ctx context.Context, ownerID string, thought *Thought) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, ok := m.users[ownerID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m.thoughts[thought.ID]; ok {
		return ErrDuplicate
	}

	m.thoughts[thought.ID] = copyThought(thought)
	owner.ThoughtIDs = append(owner.ThoughtIDs, thought.ID)
	return nil
}

// GetThought retrieves a thought by ID.
func (m *MockStore) GetThought(ctx context.Context, id string) (*Thought, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.thoughts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyThought(t), nil
}

// GetThoughts returns the thoughts with the given IDs in the order requested.
func (m *MockStore) GetThoughts(ctx context.Context, ids []string) ([]*Thought, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Thought, 0, len(ids))
	for _, id := range ids {
		if t, ok := m.thoughts[id]; ok {
			out = append(out, copyThought(t))
		}
	}
	return out, nil
}

// ListThoughts returns thoughts matching the filter, newest first.
func (m *MockStore) ListThoughts(ctx context.Context, filter ThoughtFilter) ([]*Thought, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []*Thought{}
	for _, t := range m.thoughts {
		if filter.Username != "" && t.Username != filter.Username {
			continue
		}
		out = append(out, copyThought(t))
	}
	SortThoughtsNewestFirst(out)
	return out, nil
}

// AddReaction appends a reaction and returns the updated thought.
func (m *MockStore) AddReaction(ctx context.Context, thoughtID string, reaction *Reaction) (*Thought, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.thoughts[thoughtID]
	if !ok {
		return nil, ErrNotFound
	}
	t.Reactions = append(t.Reactions, *reaction)
	return copyThought(t), nil
}

// Ping returns PingErr.
func (m *MockStore) Ping(ctx context.Context) error {
	return m.PingErr
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// Ensure MockStore implements Store
var _ Store = (*MockStore)(nil)
