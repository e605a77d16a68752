package repository

import (
	"context"

	"github.com/craftbooks/portal-server-go/internal/database"
	"github.com/craftbooks/portal-server-go/internal/model"
)

type EstimateRepository interface {
	FindByID(ctx context.Context, id string) (*model.Estimate, error)
	ListByOwner(ctx context.Context, companyID, clientID string) ([]model.Estimate, error)
	// DecideIfPending is a conditional state transition: the row is updated
	// only if it still belongs to (companyID, clientID) and is pending.
	// Returns false when zero rows matched, so a concurrent decision that
	// already landed makes the second caller lose cleanly.
	DecideIfPending(ctx context.Context, id, companyID, clientID string, status model.EstimateStatus, decidedBy string) (bool, error)
}

type estimateRepo struct {
	db database.DBTX
}

func NewEstimateRepository(db database.DBTX) EstimateRepository {
	return &estimateRepo{db: db}
}

func (r *estimateRepo) FindByID(ctx context.Context, id string) (*model.Estimate, error) {
	var estimate model.Estimate
	err := r.db.GetContext(ctx, &estimate, `SELECT * FROM estimates WHERE id = $1`, id)
	return HandleNotFound(&estimate, err)
}

func (r *estimateRepo) ListByOwner(ctx context.Context, companyID, clientID string) ([]model.Estimate, error) {
	estimates := []model.Estimate{}
	err := r.db.SelectContext(ctx, &estimates, `
		SELECT * FROM estimates
		WHERE company_id = $1 AND client_id = $2
		ORDER BY created_at DESC
	`, companyID, clientID)
	if err != nil {
		return nil, err
	}
	return estimates, nil
}

func (r *estimateRepo) DecideIfPending(ctx context.Context, id, companyID, clientID string, status model.EstimateStatus, decidedBy string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE estimates
		SET status = $4, decided_by = $5, decided_at = NOW()
		WHERE id = $1 AND company_id = $2 AND client_id = $3 AND status = 'pending'
	`, id, companyID, clientID, status, decidedBy)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
