package middleware

import (
	"net/http"
	"strings"

	"github.com/craftbooks/portal-server-go/internal/audit"
	apperrors "github.com/craftbooks/portal-server-go/internal/errors"
	"github.com/craftbooks/portal-server-go/internal/httputil"
	"github.com/craftbooks/portal-server-go/internal/util"
)

// AdminKeyMiddleware protects the share endpoint that mints portal links.
// The caller presents the plaintext admin key as a bearer token; only the
// bcrypt hash is configured server-side.
type AdminKeyMiddleware struct {
	shareKeyHash string
}

func NewAdminKeyMiddleware(shareKeyHash string) *AdminKeyMiddleware {
	return &AdminKeyMiddleware{shareKeyHash: shareKeyHash}
}

func (m *AdminKeyMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.shareKeyHash == "" {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "Sharing not configured",
			})
			return
		}

		key := extractBearer(r)
		if key == "" || !util.CheckPasswordHash(key, m.shareKeyHash) {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventShareAuthFailure,
				Details: map[string]interface{}{"path": r.URL.Path},
			})
			httputil.WriteError(w, apperrors.Unauthorized("Unauthorized"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
