package web

import (
	"context"
	"net"
	"net/http"

	"github.com/Viniciusalvim1/lumia-data-forge/internal/core"
)

// originWeb tags runs started through the HTTP API.
const originWeb = "web"

// WithRequestMetadata adds the client IP and origin to ctx for run logs.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, clientIP(r))
	return core.ContextWithOrigin(ctx, originWeb)
}

// clientIP returns the request address without its port. RemoteAddr has
// already been rewritten by TrustedRealIP for proxied requests.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
