// ABOUTME: Request identity context for tracking the caller through resolvers
// ABOUTME: Provides WithIdentity/IdentityFromContext for propagating identity via context

package auth

import (
	"context"
)

// identityContextKey is the key type for storing Identity in context.Context.
type identityContextKey struct{}

// WithIdentity returns a new context with the identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext retrieves the identity from the context, returning nil if the
// request carried no valid credential.
func IdentityFromContext(ctx context.Context) *Identity {
	val := ctx.Value(identityContextKey{})
	if val == nil {
		return nil
	}
	id, ok := val.(*Identity)
	if !ok {
		return nil
	}
	return id
}
