package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventTokenIssued      EventType = "token_issued"
	EventLinkSent         EventType = "link_sent"
	EventAuthFailure      EventType = "auth_failure"
	EventShareAuthFailure EventType = "share_auth_failure"
	EventEstimateApproved EventType = "estimate_approved"
	EventEstimateRejected EventType = "estimate_rejected"
	EventPaymentIntent    EventType = "payment_intent_created"
	EventOwnershipDenied  EventType = "ownership_denied"
	EventRateLimitExceed  EventType = "rate_limit_exceeded"
)

type Event struct {
	Type      EventType
	CompanyID string
	ClientID  string
	IP        string
	UserAgent string
	Details   map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.CompanyID != "" {
		logger = logger.With().Str("company_id", event.CompanyID).Logger()
	}
	if event.ClientID != "" {
		logger = logger.With().Str("client_id", event.ClientID).Logger()
	}
	if event.IP != "" {
		logger = logger.With().Str("ip", event.IP).Logger()
	}
	if event.UserAgent != "" {
		logger = logger.With().Str("user_agent", event.UserAgent).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("security audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case float64:
		return e.Float64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}

func LogFromRequest(r *http.Request, event Event) {
	event.IP = getClientIP(r)
	event.UserAgent = r.UserAgent()
	Log(r.Context(), event)
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
