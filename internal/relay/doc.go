// Package relay forwards prediction payloads to the upstream ML service.
//
//   - client.go: Client, New, Predict (single-hop forward) and Ping (TCP probe).
//   - errors.go: error types and helpers (IsUnavailable, IsUpstreamStatus, IsInvalidResponse).
//   - context.go: request id propagation to the upstream.
//   - metrics.go: upstream Prometheus collectors.
//
// Payloads are opaque: Predict never decodes or rewrites the request, and on
// success returns the upstream bytes as received. There are no retries and no
// caching. The logger is taken from the context (zerolog.Ctx), so callers
// control request-scoped fields and levels.
package relay
