package middleware

import (
	"net/http"
	"time"

	"github.com/craftbooks/portal-server-go/internal/util"
)

const (
	CSRFCookieName   = "csrf_token"
	CSRFHeaderName   = "X-CSRF-Token"
	csrfCookieMaxAge = 24 * time.Hour
)

// CSRFMiddleware applies the double-submit cookie pattern to portal
// mutations. It only matters for callers that let the browser carry the
// portal token as a cookie; requests that authenticate through a header
// cannot be forged cross-site and pass through untouched.
type CSRFMiddleware struct {
	isProduction bool
}

func NewCSRFMiddleware(isProduction bool) *CSRFMiddleware {
	return &CSRFMiddleware{isProduction: isProduction}
}

func (m *CSRFMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if headerAuthenticated(r) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CSRFCookieName)
		if err != nil || cookie.Value == "" {
			token, err := util.GenerateToken()
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "Failed to generate security token",
				})
				return
			}
			m.setCSRFCookie(w, token)
			cookie = &http.Cookie{Value: token}
		}

		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		headerToken := r.Header.Get(CSRFHeaderName)
		if headerToken == "" {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "Missing CSRF token",
			})
			return
		}

		if !util.ConstantTimeEqual(cookie.Value, headerToken) {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "Invalid CSRF token",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *CSRFMiddleware) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(csrfCookieMaxAge.Seconds()),
		HttpOnly: false, // the client script reads it back into the header
		Secure:   m.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func headerAuthenticated(r *http.Request) bool {
	return r.Header.Get(PortalTokenHeader) != "" || r.Header.Get("Authorization") != ""
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}
