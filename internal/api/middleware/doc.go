// Package middleware holds the HTTP middleware of the task API: trace IDs
// and request-scoped loggers, bearer-token authentication, and per-client
// rate limiting.
package middleware
