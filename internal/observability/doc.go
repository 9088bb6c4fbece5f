// Package observability provides structured logging and metrics for the
// AI gateway.
//
// This package implements:
//   - Zap logger construction tuned per environment
//   - Prometheus metrics for completions, cache traffic, rate limiting,
//     circuit transitions, and intent classification
//   - Request ID propagation into log fields
//
// Every completion attempt is instrumented, whichever provider serves it.
package observability
