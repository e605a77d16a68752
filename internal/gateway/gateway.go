// Package gateway wraps the external payment provider. The portal only
// creates payment intents; settlement lands asynchronously through the
// provider's webhooks and is reconciled downstream via the intent metadata.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/craftbooks/portal-server-go/internal/config"
)

// IntentMetadata is attached to every payment intent so the provider's
// settlement callback can be reconciled to the invoice and its owner.
type IntentMetadata struct {
	InvoiceID     string
	InvoiceNumber string
	ClientID      string
	CompanyID     string
}

type CreateIntentParams struct {
	// AmountMinor is the payment amount in the currency's minor unit (cents).
	AmountMinor int64
	Currency    string
	Metadata    IntentMetadata
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error)
}

// HTTPGateway talks to a Stripe-style payment API: form-encoded request,
// bearer secret key, JSON response carrying a client-side continuation secret.
type HTTPGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewHTTPGateway(baseURL, secretKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: config.GatewayRequestTimeout},
	}
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.AmountMinor, 10))
	form.Set("currency", params.Currency)
	form.Set("metadata[invoice_id]", params.Metadata.InvoiceID)
	form.Set("metadata[invoice_number]", params.Metadata.InvoiceNumber)
	form.Set("metadata[client_id]", params.Metadata.ClientID)
	form.Set("metadata[company_id]", params.Metadata.CompanyID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build intent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read intent response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Int("status", resp.StatusCode).
			Str("invoiceId", params.Metadata.InvoiceID).
			Msg("payment gateway rejected intent")
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var payload struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode intent response: %w", err)
	}
	if payload.ClientSecret == "" {
		return nil, fmt.Errorf("payment gateway response missing client secret")
	}

	return &PaymentIntent{ID: payload.ID, ClientSecret: payload.ClientSecret}, nil
}
