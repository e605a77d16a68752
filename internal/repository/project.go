package repository

import (
	"context"

	"github.com/craftbooks/portal-server-go/internal/database"
	"github.com/craftbooks/portal-server-go/internal/model"
)

type ProjectRepository interface {
	FindByID(ctx context.Context, id string) (*model.Project, error)
	ListByCompanyID(ctx context.Context, companyID string) ([]model.Project, error)
}

type projectRepo struct {
	db database.DBTX
}

func NewProjectRepository(db database.DBTX) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := r.db.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = $1`, id)
	return HandleNotFound(&project, err)
}

func (r *projectRepo) ListByCompanyID(ctx context.Context, companyID string) ([]model.Project, error) {
	projects := []model.Project{}
	err := r.db.SelectContext(ctx, &projects, `
		SELECT * FROM projects
		WHERE company_id = $1
		ORDER BY created_at DESC
	`, companyID)
	if err != nil {
		return nil, err
	}
	return projects, nil
}
