// Package metrics exposes Prometheus collectors for the deep-thoughts server.
//
// Metrics are grouped by source:
//
//   - graphql_operations_total / graphql_operation_duration_seconds: per operation
//   - http_requests_total / http_request_duration_seconds: per chi route pattern
//   - users_created_total, thoughts_created_total, reactions_added_total
//   - login_failures_total: rejected logins by reason (bad_credentials, throttled)
//
// Every method tolerates a nil *Metrics so components can run without metrics.
package metrics
