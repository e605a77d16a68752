// Package mailer hands rendered portal links to the outbound email
// collaborator. Delivery itself is external; this package only composes
// the message and calls the mail API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/craftbooks/portal-server-go/internal/config"
	"github.com/craftbooks/portal-server-go/internal/util"
)

type PortalLinkMessage struct {
	To          string
	CompanyName string
	Link        string
}

type LinkMailer interface {
	SendPortalLink(ctx context.Context, msg PortalLinkMessage) error
}

// HTTPMailer posts messages to a transactional mail API.
type HTTPMailer struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

func NewHTTPMailer(apiURL, apiKey, from string) *HTTPMailer {
	return &HTTPMailer{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: config.MailRequestTimeout},
	}
}

func (m *HTTPMailer) SendPortalLink(ctx context.Context, msg PortalLinkMessage) error {
	subject := "Your portal access link"
	if msg.CompanyName != "" {
		subject = fmt.Sprintf("%s has shared documents with you", msg.CompanyName)
	}

	payload, err := json.Marshal(map[string]any{
		"from":    m.from,
		"to":      msg.To,
		"subject": subject,
		"html":    renderLinkBody(msg),
	})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send portal link mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	log.Info().Str("to", msg.To).Msg("portal link mailed")
	return nil
}

func renderLinkBody(msg PortalLinkMessage) string {
	name := msg.CompanyName
	if name == "" {
		name = "Your service provider"
	}
	return fmt.Sprintf(
		`<p>%s has given you access to their client portal.</p>`+
			`<p><a href="%s">Open your portal</a></p>`+
			`<p>This link is personal to you. Do not forward it.</p>`,
		name, msg.Link,
	)
}

// LogMailer is used when no mail API is configured: delivery is skipped
// and the event logged with the link masked, since the link embeds a
// bearer token.
type LogMailer struct{}

func (LogMailer) SendPortalLink(ctx context.Context, msg PortalLinkMessage) error {
	log.Info().
		Str("to", msg.To).
		Str("link", util.MaskToken(msg.Link)).
		Msg("mail API not configured, portal link not delivered")
	return nil
}
