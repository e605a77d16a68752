package model

import (
	"time"
)

// PortalToken is the persisted credential behind a mailed portal link.
// Only the SHA-256 digest of the secret value is stored; the raw value
// leaves the system exactly once, inside the link.
type PortalToken struct {
	ID        string    `db:"id" json:"id"`
	TokenHash string    `db:"token_hash" json:"-"`
	CompanyID string    `db:"company_id" json:"companyId"`
	ClientID  string    `db:"client_id" json:"clientId"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
}

type CreatePortalTokenParams struct {
	ID        string
	TokenHash string
	CompanyID string
	ClientID  string
	Email     string
	ExpiresAt time.Time
}
