// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Maps user/thought documents onto tables with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so created_at sorts lexically in SQL.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed. ":memory:" opens a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	inMemory := path == ":memory:"
	if !inMemory {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if inMemory {
		db.SetMaxOpenConns(1)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// sqliteDSN builds a connection string whose pragmas apply to every pooled connection.
// Write transactions start IMMEDIATE so concurrent writers queue on busy_timeout
// instead of failing on lock upgrade.
func sqliteDSN(path string) string {
	params := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
	if path == ":memory:" {
		return "file::memory:?" + params
	}
	return "file:" + path + "?" + params + "&_pragma=journal_mode(WAL)"
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS thoughts (
			id           TEXT PRIMARY KEY,
			thought_text TEXT NOT NULL,
			username     TEXT NOT NULL,
			created_at   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_thoughts_created ON thoughts(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_thoughts_username ON thoughts(username, created_at DESC);

		-- Ordered thought references owned by a user
		CREATE TABLE IF NOT EXISTS user_thoughts (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL REFERENCES users(id),
			thought_id TEXT NOT NULL UNIQUE REFERENCES thoughts(id)
		);

		CREATE INDEX IF NOT EXISTS idx_user_thoughts_user ON user_thoughts(user_id, seq);

		-- One-directional friend references; the unique pair gives set semantics
		CREATE TABLE IF NOT EXISTS friends (
			seq       INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id   TEXT NOT NULL REFERENCES users(id),
			friend_id TEXT NOT NULL REFERENCES users(id),

			UNIQUE(user_id, friend_id)
		);

		CREATE INDEX IF NOT EXISTS idx_friends_user ON friends(user_id, seq);

		-- Reactions embedded in a thought, in append order
		CREATE TABLE IF NOT EXISTS reactions (
			seq           INTEGER PRIMARY KEY AUTOINCREMENT,
			id            TEXT NOT NULL UNIQUE,
			thought_id    TEXT NOT NULL REFERENCES thoughts(id),
			reaction_body TEXT NOT NULL,
			username      TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_reactions_thought ON reactions(thought_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Ping checks the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// isUniqueViolation checks if the error is a SQLite UNIQUE or PRIMARY KEY constraint violation
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "PRIMARY KEY constraint failed")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// inIDs matches a column against a JSON array bound as a single parameter,
// so the statement stays within SQLite's bind variable limit for any list size.
const inIDs = "IN (SELECT value FROM json_each(?))"

// idList encodes ids as the JSON array argument for inIDs.
func idList(ids []string) (string, error) {
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encoding id list: %w", err)
	}
	return string(data), nil
}

// withTx runs fn in a transaction, committing on success and rolling back on error.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// CreateUser inserts a new user.
// Returns ErrDuplicate if the ID, username, or email is already taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		formatTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "id", user.ID, "username", user.Username)
	return nil
}

// GetUser retrieves a user by ID.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	return s.getUserWhere(ctx, "id = ?", id)
}

// GetUserByUsername retrieves a user by username.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUserWhere(ctx, "username = ?", username)
}

// GetUserByEmail retrieves a user by email, ignoring case.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUserWhere(ctx, "email = ?", email)
}

func (s *SQLiteStore) getUserWhere(ctx context.Context, where string, arg any) (*User, error) {
	users, err := s.queryUsers(ctx, s.db, "WHERE "+where, arg)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return users[0], nil
}

// ListUsers returns all users ordered by creation time.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	return s.queryUsers(ctx, s.db, "")
}

// GetUsers returns the users with the given IDs in the order requested.
func (s *SQLiteStore) GetUsers(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}
	list, err := idList(ids)
	if err != nil {
		return nil, err
	}
	users, err := s.queryUsers(ctx, s.db, "WHERE id "+inIDs, list)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return orderByIDs(ids, byID), nil
}

// queryUsers loads user rows matching the clause and attaches their thought and friend lists.
func (s *SQLiteStore) queryUsers(ctx context.Context, q queryer, clause string, args ...any) ([]*User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users ` + clause + `
		ORDER BY created_at, id
	`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	byID := make(map[string]*User)
	for rows.Next() {
		var u User
		var createdAtStr string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.CreatedAt, err = parseTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		u.ThoughtIDs = []string{}
		u.FriendIDs = []string{}
		users = append(users, &u)
		byID[u.ID] = &u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	rows.Close()

	if len(users) == 0 {
		return users, nil
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	list, err := idList(ids)
	if err != nil {
		return nil, err
	}

	err = s.collectRefs(ctx, q,
		`SELECT user_id, thought_id FROM user_thoughts WHERE user_id `+inIDs+` ORDER BY seq`,
		[]any{list}, func(userID, ref string) {
			byID[userID].ThoughtIDs = append(byID[userID].ThoughtIDs, ref)
		})
	if err != nil {
		return nil, fmt.Errorf("loading thought references: %w", err)
	}

	err = s.collectRefs(ctx, q,
		`SELECT user_id, friend_id FROM friends WHERE user_id `+inIDs+` ORDER BY seq`,
		[]any{list}, func(userID, ref string) {
			byID[userID].FriendIDs = append(byID[userID].FriendIDs, ref)
		})
	if err != nil {
		return nil, fmt.Errorf("loading friend references: %w", err)
	}

	return users, nil
}

// collectRefs runs a two-column (owner, reference) query and feeds each row to add.
func (s *SQLiteStore) collectRefs(ctx context.Context, q queryer, query string, args []any, add func(owner, ref string)) error {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var owner, ref string
		if err := rows.Scan(&owner, &ref); err != nil {
			return err
		}
		add(owner, ref)
	}
	return rows.Err()
}

// userExists reports whether a user row exists.
func userExists(ctx context.Context, q queryer, id string) (bool, error) {
	var exists int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking user: %w", err)
	}
	return true, nil
}

// AddFriend adds friendID to the user's friend set.
// Returns ErrNotFound if either user doesn't exist. Re-adding a friend is a no-op.
func (s *SQLiteStore) AddFriend(ctx context.Context, userID, friendID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range []string{userID, friendID} {
			ok, err := userExists(ctx, tx, id)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNotFound
			}
		}

		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO friends (user_id, friend_id) VALUES (?, ?)`,
			userID, friendID,
		)
		if err != nil {
			return fmt.Errorf("inserting friend: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			s.logger.Debug("added friend", "user_id", userID, "friend_id", friendID)
		}
		return nil
	})
}

// AddThought inserts the thought and links it to its owner in one transaction.
// Returns ErrNotFound if the owner doesn't exist and ErrDuplicate on an ID collision.
func (s *SQLiteStore) AddThought(ctx context.Context, ownerID string, thought *Thought) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := userExists(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO thoughts (id, thought_text, username, created_at)
			VALUES (?, ?, ?, ?)
		`, thought.ID, thought.ThoughtText, thought.Username, formatTime(thought.CreatedAt))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("inserting thought: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_thoughts (user_id, thought_id) VALUES (?, ?)`,
			ownerID, thought.ID,
		)
		if err != nil {
			return fmt.Errorf("linking thought: %w", err)
		}

		s.logger.Debug("created thought", "id", thought.ID, "username", thought.Username)
		return nil
	})
}

// GetThought retrieves a thought with its reactions.
// Returns ErrNotFound if the thought doesn't exist.
func (s *SQLiteStore) GetThought(ctx context.Context, id string) (*Thought, error) {
	thoughts, err := s.queryThoughts(ctx, s.db, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(thoughts) == 0 {
		return nil, ErrNotFound
	}
	return thoughts[0], nil
}

// GetThoughts returns the thoughts with the given IDs in the order requested.
func (s *SQLiteStore) GetThoughts(ctx context.Context, ids []string) ([]*Thought, error) {
	if len(ids) == 0 {
		return []*Thought{}, nil
	}
	list, err := idList(ids)
	if err != nil {
		return nil, err
	}
	thoughts, err := s.queryThoughts(ctx, s.db, "WHERE id "+inIDs, list)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Thought, len(thoughts))
	for _, t := range thoughts {
		byID[t.ID] = t
	}
	return orderByIDs(ids, byID), nil
}

// ListThoughts returns thoughts matching the filter, newest first.
func (s *SQLiteStore) ListThoughts(ctx context.Context, filter ThoughtFilter) ([]*Thought, error) {
	if filter.Username != "" {
		return s.queryThoughts(ctx, s.db, "WHERE username = ?", filter.Username)
	}
	return s.queryThoughts(ctx, s.db, "")
}

// queryThoughts loads thought rows matching the clause and attaches their reactions.
func (s *SQLiteStore) queryThoughts(ctx context.Context, q queryer, clause string, args ...any) ([]*Thought, error) {
	query := `
		SELECT id, thought_text, username, created_at
		FROM thoughts ` + clause + `
		ORDER BY created_at DESC, id DESC
	`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying thoughts: %w", err)
	}
	defer rows.Close()

	thoughts := []*Thought{}
	byID := make(map[string]*Thought)
	for rows.Next() {
		var t Thought
		var createdAtStr string
		if err := rows.Scan(&t.ID, &t.ThoughtText, &t.Username, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning thought: %w", err)
		}
		t.CreatedAt, err = parseTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		t.Reactions = []Reaction{}
		thoughts = append(thoughts, &t)
		byID[t.ID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating thoughts: %w", err)
	}
	rows.Close()

	if len(thoughts) == 0 {
		return thoughts, nil
	}

	ids := make([]string, 0, len(thoughts))
	for _, t := range thoughts {
		ids = append(ids, t.ID)
	}
	list, err := idList(ids)
	if err != nil {
		return nil, err
	}

	reactionRows, err := q.QueryContext(ctx, `
		SELECT thought_id, id, reaction_body, username, created_at
		FROM reactions
		WHERE thought_id `+inIDs+`
		ORDER BY seq
	`, list)
	if err != nil {
		return nil, fmt.Errorf("querying reactions: %w", err)
	}
	defer reactionRows.Close()

	for reactionRows.Next() {
		var thoughtID, createdAtStr string
		var r Reaction
		if err := reactionRows.Scan(&thoughtID, &r.ID, &r.ReactionBody, &r.Username, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning reaction: %w", err)
		}
		r.CreatedAt, err = parseTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		byID[thoughtID].Reactions = append(byID[thoughtID].Reactions, r)
	}
	if err := reactionRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reactions: %w", err)
	}

	return thoughts, nil
}

// AddReaction appends a reaction to a thought and returns the updated thought.
// Returns ErrNotFound if the thought doesn't exist.
func (s *SQLiteStore) AddReaction(ctx context.Context, thoughtID string, reaction *Reaction) (*Thought, error) {
	var updated *Thought
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM thoughts WHERE id = ?`, thoughtID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("checking thought: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO reactions (id, thought_id, reaction_body, username, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, reaction.ID, thoughtID, reaction.ReactionBody, reaction.Username, formatTime(reaction.CreatedAt))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("inserting reaction: %w", err)
		}

		thoughts, err := s.queryThoughts(ctx, tx, "WHERE id = ?", thoughtID)
		if err != nil {
			return err
		}
		updated = thoughts[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("added reaction", "thought_id", thoughtID, "reaction_id", reaction.ID)
	return updated, nil
}
