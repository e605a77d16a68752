package model

import (
	"time"
)

type Invoice struct {
	ID            string        `db:"id" json:"id"`
	CompanyID     string        `db:"company_id" json:"companyId"`
	ClientID      string        `db:"client_id" json:"clientId"`
	InvoiceNumber string        `db:"invoice_number" json:"invoiceNumber"`
	Total         float64       `db:"total" json:"total"`
	BalanceDue    float64       `db:"balance_due" json:"balanceDue"`
	Status        InvoiceStatus `db:"status" json:"status"`
	DueDate       *time.Time    `db:"due_date" json:"dueDate,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
}
