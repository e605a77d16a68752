package repository

import (
	"context"

	"github.com/craftbooks/portal-server-go/internal/database"
	"github.com/craftbooks/portal-server-go/internal/model"
)

type PortalTokenRepository interface {
	Create(ctx context.Context, params model.CreatePortalTokenParams) (*model.PortalToken, error)
	// FindActiveByHash returns nil for unknown and expired hashes alike; the
	// expiry check lives in the query so the two cases are indistinguishable.
	FindActiveByHash(ctx context.Context, tokenHash string) (*model.PortalToken, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type portalTokenRepo struct {
	db database.DBTX
}

func NewPortalTokenRepository(db database.DBTX) PortalTokenRepository {
	return &portalTokenRepo{db: db}
}

func (r *portalTokenRepo) Create(ctx context.Context, params model.CreatePortalTokenParams) (*model.PortalToken, error) {
	var token model.PortalToken
	err := r.db.GetContext(ctx, &token, `
		INSERT INTO portal_tokens (id, token_hash, company_id, client_id, email, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.ID, params.TokenHash, params.CompanyID, params.ClientID, params.Email, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *portalTokenRepo) FindActiveByHash(ctx context.Context, tokenHash string) (*model.PortalToken, error) {
	var token model.PortalToken
	err := r.db.GetContext(ctx, &token, `
		SELECT * FROM portal_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
	`, tokenHash)
	return HandleNotFound(&token, err)
}

func (r *portalTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM portal_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
