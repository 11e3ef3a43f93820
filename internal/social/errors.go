// ABOUTME: Sentinel errors returned by the social service
// ABOUTME: The GraphQL layer maps each one to an extension code with errors.Is

package social

import (
	"errors"
	"fmt"

	"github.com/2389/deep-thoughts/internal/store"
)

var (
	// ErrUnauthenticated is returned when an operation needs a caller identity and none is present.
	ErrUnauthenticated = errors.New("you need to be logged in")

	// ErrInvalidCredentials is returned for every failed login, whatever the cause.
	ErrInvalidCredentials = errors.New("incorrect credentials")

	// ErrNotFound is returned when a referenced user or thought does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEntity is returned when a username or email is already taken.
	ErrDuplicateEntity = errors.New("already in use")

	// ErrInvalidInput wraps validation failures.
	ErrInvalidInput = errors.New("invalid input")
)

// translateStoreError maps store sentinels onto service sentinels, naming the entity.
// Other errors are wrapped with the action that failed.
func translateStoreError(err error, entity, action string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%s %w", entity, ErrDuplicateEntity)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
