package registry

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RequestGate admission control for outbound registry calls.
//
// One gate instance is shared by every component that talks to the registry,
// including the taxonomy resolver, so the process as a whole never exceeds
// the registry's request rate. Acquire blocks until a request slot is
// available or the context ends.
type RequestGate interface {
	/*
		Acquire block until the next outbound request may be issued

			@param ctx context.Context - execution context
	*/
	Acquire(ctx context.Context) error
}

// tokenBucketGate implements RequestGate with a token bucket
type tokenBucketGate struct {
	limiter *rate.Limiter
}

/*
NewRequestGate define a token-bucket request gate allowing one request per window

	@param window time.Duration - minimum spacing between outbound requests
	@return new request gate
*/
func NewRequestGate(window time.Duration) RequestGate {
	return &tokenBucketGate{limiter: rate.NewLimiter(rate.Every(window), 1)}
}

/*
Acquire block until the next outbound request may be issued

	@param ctx context.Context - execution context
*/
func (g *tokenBucketGate) Acquire(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// unthrottledGate implements RequestGate without any delay
type unthrottledGate struct{}

// NewUnthrottledGate define a request gate which never delays. Meant for testing.
func NewUnthrottledGate() RequestGate {
	return &unthrottledGate{}
}

/*
Acquire block until the next outbound request may be issued

	@param ctx context.Context - execution context
*/
func (g *unthrottledGate) Acquire(ctx context.Context) error {
	return ctx.Err()
}
