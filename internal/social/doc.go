// Package social implements the user-facing operations of deep-thoughts:
// signing up, logging in, posting thoughts, reacting, and befriending.
//
// Service is transport-agnostic. It reads the caller from the request
// context (see auth.IdentityFromContext), validates input with struct tags,
// and delegates persistence to a store.Store. Errors are the sentinels in
// errors.go so callers can classify them with errors.Is.
package social
