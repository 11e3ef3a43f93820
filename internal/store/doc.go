// Package store provides persistence for users, thoughts, and reactions.
//
// # Architecture
//
// Store is the single interface the domain service depends on. Two backends
// implement it:
//
//   - SQLiteStore: modernc.org/sqlite, the default for single-node deployments
//   - DynamoDBStore: one DynamoDB table, for deployments on AWS
//
// MockStore is an in-memory implementation for unit tests.
//
// # Data Models
//
//   - User: account with ordered thought references and a friend set
//   - Thought: short post carrying a denormalized author username
//   - Reaction: comment embedded in its thought, in append order
//
// Password hashes live on User but never leave the service layer.
//
// # Atomicity
//
// Appends are single operations: AddThought inserts the thought and links it
// to the owner together, AddReaction appends one element, and AddFriend
// adds to a set. SQLite runs each in an IMMEDIATE transaction; DynamoDB uses
// TransactWriteItems or a conditional list_append.
//
// # SQLite Configuration
//
// Pragmas are set in the DSN so they apply to every pooled connection:
//
//	journal_mode=WAL, foreign_keys=ON, busy_timeout=5000
//
// Timestamps are stored as fixed-width UTC text so ORDER BY created_at is
// chronological.
//
// # DynamoDB Layout
//
//	PK                 SK        Item
//	USER#<id>          PROFILE   user with ThoughtIDs and FriendIDs lists
//	USERNAME#<name>    UNIQUE    username reservation
//	EMAIL#<email>      UNIQUE    lowercased email reservation
//	THOUGHT#<id>       THOUGHT   thought with embedded Reactions list
//
// # Error Handling
//
//   - ErrNotFound: requested entity does not exist
//   - ErrDuplicate: username, email, or ID already taken
//
// # Testing
//
// Use NewMockStore() for unit tests and NewSQLiteStore(":memory:") for
// integration tests with real SQLite.
package store
