// Package lib groups supporting packages that sit outside the request
// layers: background jobs (Asynq), email delivery (Resend), Prometheus
// metrics and password hashing.
package lib
