package middlewarex

import (
	"context"
	"net"
	"net/http"
	"strings"

	"buckaroopay/internal/provider"
)

type ctxKey string

const (
	ctxClientInfo ctxKey = "client_info"
)

func WithClientInfo(ctx context.Context, info provider.ClientInfo) context.Context {
	return context.WithValue(ctx, ctxClientInfo, info)
}

func GetClientInfo(ctx context.Context) (provider.ClientInfo, bool) {
	v, ok := ctx.Value(ctxClientInfo).(provider.ClientInfo)
	return v, ok
}

// ClientInfo records the shopper's IP and user agent for the checkout start.
// The first X-Forwarded-For hop wins over RemoteAddr.
func ClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := provider.ClientInfo{
			IP:        clientIP(r),
			UserAgent: r.UserAgent(),
		}
		next.ServeHTTP(w, r.WithContext(WithClientInfo(r.Context(), info)))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
