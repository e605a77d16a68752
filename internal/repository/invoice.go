package repository

import (
	"context"

	"github.com/craftbooks/portal-server-go/internal/database"
	"github.com/craftbooks/portal-server-go/internal/model"
)

type InvoiceRepository interface {
	FindByID(ctx context.Context, id string) (*model.Invoice, error)
	ListByOwner(ctx context.Context, companyID, clientID string) ([]model.Invoice, error)
}

type invoiceRepo struct {
	db database.DBTX
}

func NewInvoiceRepository(db database.DBTX) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.GetContext(ctx, &invoice, `SELECT * FROM invoices WHERE id = $1`, id)
	return HandleNotFound(&invoice, err)
}

func (r *invoiceRepo) ListByOwner(ctx context.Context, companyID, clientID string) ([]model.Invoice, error) {
	invoices := []model.Invoice{}
	err := r.db.SelectContext(ctx, &invoices, `
		SELECT * FROM invoices
		WHERE company_id = $1 AND client_id = $2
		ORDER BY created_at DESC
	`, companyID, clientID)
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
