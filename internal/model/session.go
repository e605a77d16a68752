package model

import "time"

// PortalSession is the per-request authorization context derived from a
// presented token. It is never persisted or cached across requests; the
// session middleware rebuilds it from the token on every request.
type PortalSession struct {
	TokenID   string    `json:"tokenId"`
	CompanyID string    `json:"companyId"`
	ClientID  string    `json:"clientId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}
