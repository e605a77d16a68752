package model

import (
	"time"
)

type Estimate struct {
	ID             string         `db:"id" json:"id"`
	CompanyID      string         `db:"company_id" json:"companyId"`
	ClientID       string         `db:"client_id" json:"clientId"`
	EstimateNumber string         `db:"estimate_number" json:"estimateNumber"`
	Title          string         `db:"title" json:"title"`
	Amount         float64        `db:"amount" json:"amount"`
	Status         EstimateStatus `db:"status" json:"status"`
	DecidedBy      *string        `db:"decided_by" json:"decidedBy,omitempty"`
	DecidedAt      *time.Time     `db:"decided_at" json:"decidedAt,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}

// IsActionable reports whether the estimate still accepts a client decision.
// Approved, rejected, and expired are all terminal for the approval flow.
func (e *Estimate) IsActionable() bool {
	return e.Status == EstimateStatusPending
}
