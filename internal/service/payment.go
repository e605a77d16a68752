package service

import (
	"context"
	"fmt"
	"math"

	"github.com/craftbooks/portal-server-go/internal/audit"
	apperrors "github.com/craftbooks/portal-server-go/internal/errors"
	"github.com/craftbooks/portal-server-go/internal/gateway"
	"github.com/craftbooks/portal-server-go/internal/model"
	"github.com/craftbooks/portal-server-go/internal/repository"
)

// PaymentService validates a payment attempt against the invoice's
// outstanding balance and delegates intent creation to the payment
// gateway. No local payment record is written here; settlement arrives
// through the gateway's webhooks and is recorded downstream.
//
// Intent creation is not idempotent: two rapid attempts for the same
// invoice both reach the gateway. Deduplication is a gateway-side and
// reconciliation concern.
type PaymentService struct {
	invoiceRepo repository.InvoiceRepository
	gateway     gateway.PaymentGateway
	currency    string
}

func NewPaymentService(invoiceRepo repository.InvoiceRepository, gw gateway.PaymentGateway, currency string) *PaymentService {
	return &PaymentService{
		invoiceRepo: invoiceRepo,
		gateway:     gw,
		currency:    currency,
	}
}

// CreatePayment validates amount (currency units) against the invoice and
// returns the gateway's client-side continuation handle verbatim.
func (s *PaymentService) CreatePayment(ctx context.Context, invoiceID string, amount float64, session *model.PortalSession) (*gateway.PaymentIntent, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, apperrors.ValidationError("Payment amount must be a number")
	}
	if amount <= 0 {
		return nil, apperrors.ValidationError("Payment amount must be greater than zero")
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if invoice == nil {
		return nil, apperrors.NotFound("Invoice")
	}
	if err := checkOwnership(ctx, session, "invoice", invoice.CompanyID, &invoice.ClientID); err != nil {
		return nil, err
	}

	if amount > invoice.BalanceDue {
		return nil, apperrors.ValidationError(fmt.Sprintf(
			"Payment amount $%.2f exceeds balance due $%.2f", amount, invoice.BalanceDue,
		))
	}

	// Minor units are rounded to nearest, never truncated: truncation
	// would systematically underbill fractional-cent amounts.
	amountMinor := int64(math.Round(amount * 100))

	intent, err := s.gateway.CreateIntent(ctx, gateway.CreateIntentParams{
		AmountMinor: amountMinor,
		Currency:    s.currency,
		Metadata: gateway.IntentMetadata{
			InvoiceID:     invoice.ID,
			InvoiceNumber: invoice.InvoiceNumber,
			ClientID:      session.ClientID,
			CompanyID:     session.CompanyID,
		},
	})
	if err != nil {
		return nil, apperrors.Gateway(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventPaymentIntent,
		CompanyID: session.CompanyID,
		ClientID:  session.ClientID,
		Details: map[string]interface{}{
			"invoice_id":   invoice.ID,
			"amount_minor": amountMinor,
		},
	})

	return intent, nil
}
