package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/craftbooks/portal-server-go/internal/audit"
	apperrors "github.com/craftbooks/portal-server-go/internal/errors"
	"github.com/craftbooks/portal-server-go/internal/httputil"
	"github.com/craftbooks/portal-server-go/internal/service"
)

// IPRateLimitMiddleware throttles a route per client IP using the shared
// redis sliding window. Meant for the send-link surface, which mints
// credentials and must not be mass-driven by a single caller.
type IPRateLimitMiddleware struct {
	limiter *service.RateLimiter
	limit   int
	window  time.Duration
	prefix  string
}

func NewIPRateLimitMiddleware(limiter *service.RateLimiter, limit int, window time.Duration, prefix string) *IPRateLimitMiddleware {
	return &IPRateLimitMiddleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		prefix:  prefix,
	}
}

func (m *IPRateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// chi's RealIP middleware runs first, so RemoteAddr already
		// reflects X-Forwarded-For when present.
		ip := r.RemoteAddr

		key := fmt.Sprintf("ip:%s:%s", m.prefix, ip)
		allowed, resetAt := m.limiter.CheckLimit(r.Context(), key, m.limit, m.window)

		if !allowed {
			secondsLeft := int(time.Until(resetAt).Seconds()) + 1
			w.Header().Set("Retry-After", fmt.Sprintf("%d", secondsLeft))
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventRateLimitExceed,
				Details: map[string]interface{}{"path": r.URL.Path, "limit": m.limit},
			})
			httputil.WriteError(w, apperrors.RateLimitExceeded())
			return
		}

		next.ServeHTTP(w, r)
	})
}
