// Package kit holds the small transport-agnostic plumbing shared by the
// service packages: the endpoint abstraction, request-scoped context keys,
// and the MCP tool adapter.
package kit

import "context"

// Endpoint is a single request/response interaction, independent of the
// transport it arrived on.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behavior.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first listed runs outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
