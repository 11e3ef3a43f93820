// ABOUTME: GraphQL error values carrying an extensions.code for clients
// ABOUTME: Maps social sentinels to codes and masks unexpected failures

package graph

import (
	"errors"

	"github.com/2389/deep-thoughts/internal/social"
)

// Error codes reported in extensions.code.
const (
	CodeOK                 = "OK"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicateEntity    = "DUPLICATE_ENTITY"
	CodeBadUserInput       = "BAD_USER_INPUT"
	CodeInternal           = "INTERNAL"
)

const internalMessage = "internal error"

// Error is a resolver error exposed to clients with a machine-readable code.
type Error struct {
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

// Extensions is read by the GraphQL executor and copied into the response.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// classify returns the extension code for err, or CodeInternal when err is
// not one of the social sentinels.
func classify(err error) string {
	switch {
	case errors.Is(err, social.ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, social.ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, social.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, social.ErrDuplicateEntity):
		return CodeDuplicateEntity
	case errors.Is(err, social.ErrInvalidInput):
		return CodeBadUserInput
	default:
		return CodeInternal
	}
}

// toError converts a service error into an *Error. Internal errors keep only a
// generic message; the caller is responsible for logging the original.
func toError(err error) *Error {
	code := classify(err)
	if code == CodeInternal {
		return &Error{Message: internalMessage, Code: code}
	}
	return &Error{Message: err.Error(), Code: code}
}
