// ABOUTME: Tests for request identity context helpers
// ABOUTME: Verifies WithIdentity/IdentityFromContext round trips and nil handling

package auth

import (
	"context"
	"testing"
)

func TestIdentityFromContext(t *testing.T) {
	ctx := WithIdentity(context.Background(), &alice)

	got := IdentityFromContext(ctx)
	if got == nil {
		t.Fatal("IdentityFromContext() = nil, want identity")
	}
	if *got != alice {
		t.Errorf("IdentityFromContext() = %+v, want %+v", *got, alice)
	}
}

func TestIdentityFromContext_Missing(t *testing.T) {
	if got := IdentityFromContext(context.Background()); got != nil {
		t.Errorf("IdentityFromContext() = %+v, want nil", got)
	}
}

func TestIdentityFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), identityContextKey{}, "not an identity")
	if got := IdentityFromContext(ctx); got != nil {
		t.Errorf("IdentityFromContext() = %+v, want nil", got)
	}
}
