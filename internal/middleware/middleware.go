// Package middleware holds the global Echo middleware: CORS, request ids,
// request-scoped logging, panic recovery, secure headers, New Relic
// tracing, Prometheus metrics and the global error handler that renders
// every failure as an error envelope.
package middleware
