// ABOUTME: Store interface and document types for deep-thoughts persistence
// ABOUTME: Defines User, Thought, Reaction and the operations every backend provides

package store

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write violates a uniqueness constraint
// (username or email already taken, or an ID collision)
var ErrDuplicate = errors.New("duplicate entity")

// User is a registered account. PasswordHash is only read by the login check;
// every API projection leaves it out.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	ThoughtIDs   []string // creation order
	FriendIDs    []string // set semantics, insertion order
	CreatedAt    time.Time
}

// FriendCount is the number of distinct friends.
func (u *User) FriendCount() int {
	return len(u.FriendIDs)
}

// Thought is a short post. Username is a denormalized copy of the owner's name.
type Thought struct {
	ID          string
	ThoughtText string
	Username    string
	CreatedAt   time.Time
	Reactions   []Reaction // append order
}

// ReactionCount is the number of embedded reactions.
func (t *Thought) ReactionCount() int {
	return len(t.Reactions)
}

// Reaction is a comment embedded in its Thought. Username is the author's name.
type Reaction struct {
	ID           string
	ReactionBody string
	Username     string
	CreatedAt    time.Time
}

// ThoughtFilter narrows ListThoughts. An empty Username matches all thoughts.
type ThoughtFilter struct {
	Username string
}

// Store defines the persistence operations used by the domain service.
// Appends and set-adds are single atomic operations in every implementation.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	// GetUsers returns the users with the given IDs in the same order, skipping unknown IDs
	GetUsers(ctx context.Context, ids []string) ([]*User, error)
	// AddFriend adds friendID to the user's friend set; adding an existing friend is a no-op
	AddFriend(ctx context.Context, userID, friendID string) error

	// Thoughts
	// AddThought inserts the thought and appends its ID to the owner's thought list
	AddThought(ctx context.Context, ownerID string, thought *Thought) error
	GetThought(ctx context.Context, id string) (*Thought, error)
	// GetThoughts returns the thoughts with the given IDs in the same order, skipping unknown IDs
	GetThoughts(ctx context.Context, ids []string) ([]*Thought, error)
	ListThoughts(ctx context.Context, filter ThoughtFilter) ([]*Thought, error)
	// AddReaction appends a reaction and returns the updated thought
	AddReaction(ctx context.Context, thoughtID string, reaction *Reaction) (*Thought, error)

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}

// SortThoughtsNewestFirst orders thoughts by creation time descending, breaking ties
// by ID descending so the order is deterministic.
func SortThoughtsNewestFirst(thoughts []*Thought) {
	sort.SliceStable(thoughts, func(i, j int) bool {
		a, b := thoughts[i], thoughts[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// orderByIDs returns the items whose key appears in ids, in the order of ids.
func orderByIDs[T any](ids []string, byID map[string]T) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

// containsID reports whether id is present in ids.
func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
