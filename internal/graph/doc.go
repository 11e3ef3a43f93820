// Package graph exposes social.Service as a GraphQL API.
//
// The schema lives in schema.graphql and is embedded at build time. Resolver
// is the root for both Query and Mutation; object resolvers wrap store types
// and add presentation fields (formatted createdAt, Markdown thoughtHtml).
//
// Service errors are returned as *Error, whose Extensions method puts a code
// such as UNAUTHENTICATED or NOT_FOUND under extensions.code. Unexpected
// failures are logged and reported as INTERNAL with a generic message.
//
// Handler serves the schema over HTTP. Authentication happens upstream in
// auth.OptionalAuthMiddleware; resolvers read the identity from the context.
package graph
