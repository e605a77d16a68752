package model

import (
	"time"
)

// Project is read-only in the portal. Ownership is company-level: the
// client-to-project relationship is mediated by the company.
type Project struct {
	ID          string        `db:"id" json:"id"`
	CompanyID   string        `db:"company_id" json:"companyId"`
	Name        string        `db:"name" json:"name"`
	Description *string       `db:"description" json:"description,omitempty"`
	Status      ProjectStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
}
