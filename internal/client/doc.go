// Package client is a small GraphQL-over-HTTP client for the deep-thoughts API.
//
// It posts JSON requests to /graphql with an optional bearer token and
// surfaces the first GraphQL error as *Error, whose Code method returns the
// server's extensions.code. Typed methods cover every query and mutation.
package client
