// Package metrics provides Prometheus metrics for the transaction-logged
// REST client.
//
// Every Metrics value owns its own registry so that independent clients
// (and tests) never collide on registration.
//
// # Metrics
//
//   - kitir_transactions_total: completed calls (labels: client, method, status)
//   - kitir_transaction_duration_seconds: call latency (labels: client, method)
//   - kitir_transport_errors_total: transport failures (labels: client, kind, ignored)
//   - kitir_log_failures_total: request/response artifacts that could not be written (labels: client, side)
//   - kitir_log_files_total: artifacts written (labels: client, side)
//
// # Label Conventions
//
//   - method: upper-case HTTP method
//   - status: numeric status code
//   - kind: timeout, aborted, other
//   - side: request, response
package metrics
