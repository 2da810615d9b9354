// Package errs defines the error taxonomy of the API.
//
// Every failure that reaches a client is an *HTTPError carrying one of four
// kinds. The kind alone decides the HTTP status, through a single table.
package errs
