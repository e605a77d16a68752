package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/craftbooks/portal-server-go/internal/audit"
	"github.com/craftbooks/portal-server-go/internal/httputil"
	"github.com/craftbooks/portal-server-go/internal/model"
)

const PortalTokenCookie = "portal_token"

const PortalTokenHeader = "X-Portal-Token"

type contextKey string

const PortalSessionContextKey contextKey = "portalSession"

// GetPortalSession returns the session attached by PortalSessionMiddleware,
// or nil when the request never passed through it.
func GetPortalSession(ctx context.Context) *model.PortalSession {
	if session, ok := ctx.Value(PortalSessionContextKey).(*model.PortalSession); ok {
		return session
	}
	return nil
}

// TokenResolver turns a raw presented token into a session scope.
type TokenResolver interface {
	Resolve(ctx context.Context, rawToken string) (*model.PortalSession, error)
}

// PortalSessionMiddleware guards portal routes. Every request re-resolves
// the presented token; there is no server-side session state, so expiry
// and revocation-by-cleanup take effect on the very next request.
type PortalSessionMiddleware struct {
	tokens TokenResolver
}

func NewPortalSessionMiddleware(tokens TokenResolver) *PortalSessionMiddleware {
	return &PortalSessionMiddleware{tokens: tokens}
}

func (m *PortalSessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := ExtractPortalToken(r)

		session, err := m.tokens.Resolve(r.Context(), raw)
		if err != nil {
			// Missing, unknown, and expired tokens all produce the same
			// response; store failures surface as 500 instead.
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventAuthFailure,
				Details: map[string]interface{}{"path": r.URL.Path},
			})
			httputil.WriteError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), PortalSessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractPortalToken pulls the raw token off a request. The header wins,
// then the cookie, then the query parameter the mailed link carries.
func ExtractPortalToken(r *http.Request) string {
	if token := r.Header.Get(PortalTokenHeader); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if cookie, err := r.Cookie(PortalTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return r.URL.Query().Get("token")
}

// SetPortalCookie stores the raw token client-side so follow-up requests
// do not need to keep it in the URL.
func SetPortalCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     PortalTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearPortalCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   PortalTokenCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
