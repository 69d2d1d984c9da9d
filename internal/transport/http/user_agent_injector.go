package http

import "net/http"

// userAgentHeader is the HTTP header name for User-Agent.
const userAgentHeader = "User-Agent"

// UserAgentInjector is an http.RoundTripper that stamps outgoing requests
// with a User-Agent header. A header set by the caller is left alone.
type UserAgentInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// userAgent is the header value to inject.
	userAgent string
}

// NewUserAgentInjector wraps next so that every request carries userAgent
// unless the request already sets its own.
func NewUserAgentInjector(next http.RoundTripper, userAgent string) http.RoundTripper {
	return &UserAgentInjector{
		next:      next,
		userAgent: userAgent,
	}
}

// RoundTrip executes a single HTTP transaction.
// It implements the http.RoundTripper interface.
func (t *UserAgentInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(userAgentHeader) == "" {
		req.Header.Set(userAgentHeader, t.userAgent)
	}

	return t.next.RoundTrip(req)
}
