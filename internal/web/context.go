package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/leadboard/internal/core"
)

// WithRequestMetadata records the client address and User-Agent on ctx so
// import logs can name who submitted a file.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, clientIP(r), r.UserAgent())
}

// clientIP returns the host part of RemoteAddr, which TrustedRealIP has
// already rewritten for requests from trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
