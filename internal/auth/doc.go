// Package auth provides credentials and request identity for deep-thoughts.
//
// # Credentials
//
// A credential is an HS256 JWT signed with the configured auth.jwt_secret. The
// payload nests the caller's identity under a "data" claim:
//
//	{"data": {"username": "alice", "email": "alice@x.com", "_id": "..."}, "exp": ..., "iat": ...}
//
// Credentials expire after auth.token_ttl (two hours by default). There is no
// refresh; an expired credential requires logging in again.
//
//	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: secret, TTL: 2 * time.Hour})
//	token, err := codec.Issue(auth.Identity{Username: "alice", Email: "alice@x.com", ID: id})
//	identity, err := codec.Verify(token)
//
// # Request Identity
//
// OptionalAuthMiddleware looks for a credential in the JSON body field "token",
// then the "token" query parameter, then the Authorization header (with or
// without a "Bearer " prefix). A verified identity is attached to the request
// context and read back with IdentityFromContext. Requests without a credential,
// or with a malformed or expired one, proceed without an identity; resolvers
// that need one fail with an authentication error of their own.
//
// # Passwords
//
// HashPassword and CheckPassword wrap bcrypt. CheckPassword with an empty hash
// still performs a comparison so that unknown accounts and wrong passwords take
// the same time.
package auth
