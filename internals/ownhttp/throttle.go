package ownhttp

import (
	"net/http"

	"golang.org/x/time/rate"
)

// ThrottleTransport delays requests so that no more than the limiter allows
// reach the upstream. Waiting respects the request context, so a cancelled
// sign-in stops queueing immediately.
type ThrottleTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (tt *ThrottleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := tt.limiter.Wait(req.Context()); err != nil {
		// Wait also fails when the deadline would be exceeded before a token is available
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return tt.next.RoundTrip(req)
}

// Limit returns the configured requests per second
func (tt *ThrottleTransport) Limit() rate.Limit { return tt.limiter.Limit() }

func NewThrottleTransport(next http.RoundTripper, limiter *rate.Limiter) *ThrottleTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &ThrottleTransport{next, limiter}
}
