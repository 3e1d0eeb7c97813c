// Package restful wraps net/http with per-transaction logging.
//
// Every call made through a Client gets a transaction id drawn from a
// monotonically increasing counter. When logging is enabled the request
// body (or URL) and the response body are written to
//
//	<log_root>/<client_name>/request/<transaction_id>.txt
//	<log_root>/<client_name>/response/<transaction_id>.txt
//
// Full-fidelity mode writes structured JSON records with a .json
// extension instead.
//
// Transport options (headers, body, timeout, session) travel in a
// Transport value; logging-control options travel separately in a
// LogOptions value and never reach the wire.
//
//	c := restful.New("https://api.example.com", restful.WithName("billing"))
//	resp, err := c.Post(ctx, "/invoices", &restful.Transport{JSON: inv},
//	    &restful.LogOptions{TransactionName: "create-invoice"})
//
// Logging is best-effort. A failure to write an artifact is logged and
// never changes what the caller receives.
package restful
