// Package server assembles the deep-thoughts API process.
//
// New opens the configured store (SQLite or DynamoDB), builds the token codec,
// login throttle, metrics registry, social.Service, and GraphQL schema, and
// mounts them on a chi router:
//
//	/graphql        GraphQL over HTTP (GET and POST), optional bearer auth
//	/health         liveness
//	/health/ready   store ping, 503 when unreachable
//	/metrics        Prometheus exposition, when metrics.enabled
//
// Run listens on server.http_addr, or on a Tailscale node when
// tailscale.enabled, and shuts down gracefully when its context is canceled.
package server
