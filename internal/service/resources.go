package service

import (
	"context"

	apperrors "github.com/craftbooks/portal-server-go/internal/errors"
	"github.com/craftbooks/portal-server-go/internal/model"
	"github.com/craftbooks/portal-server-go/internal/repository"
)

// ResourceService exposes the portal's read surface. Every Get fetches by
// id and runs the shared ownership check before anything is returned, and
// every List is scoped by the session's identifiers at the query itself.
// No path returns data across a company boundary.
type ResourceService struct {
	projectRepo  repository.ProjectRepository
	estimateRepo repository.EstimateRepository
	invoiceRepo  repository.InvoiceRepository
}

func NewResourceService(
	projectRepo repository.ProjectRepository,
	estimateRepo repository.EstimateRepository,
	invoiceRepo repository.InvoiceRepository,
) *ResourceService {
	return &ResourceService{
		projectRepo:  projectRepo,
		estimateRepo: estimateRepo,
		invoiceRepo:  invoiceRepo,
	}
}

// GetProject returns a project owned by the session's company. Projects
// carry no client id; company ownership is the whole check.
func (s *ResourceService) GetProject(ctx context.Context, id string, session *model.PortalSession) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if project == nil {
		return nil, apperrors.NotFound("Project")
	}
	if err := checkOwnership(ctx, session, "project", project.CompanyID, nil); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ResourceService) ListProjects(ctx context.Context, session *model.PortalSession) ([]model.Project, error) {
	projects, err := s.projectRepo.ListByCompanyID(ctx, session.CompanyID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return projects, nil
}

func (s *ResourceService) GetEstimate(ctx context.Context, id string, session *model.PortalSession) (*model.Estimate, error) {
	estimate, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if estimate == nil {
		return nil, apperrors.NotFound("Estimate")
	}
	if err := checkOwnership(ctx, session, "estimate", estimate.CompanyID, &estimate.ClientID); err != nil {
		return nil, err
	}
	return estimate, nil
}

func (s *ResourceService) ListEstimates(ctx context.Context, session *model.PortalSession) ([]model.Estimate, error) {
	estimates, err := s.estimateRepo.ListByOwner(ctx, session.CompanyID, session.ClientID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return estimates, nil
}

func (s *ResourceService) GetInvoice(ctx context.Context, id string, session *model.PortalSession) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if invoice == nil {
		return nil, apperrors.NotFound("Invoice")
	}
	if err := checkOwnership(ctx, session, "invoice", invoice.CompanyID, &invoice.ClientID); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *ResourceService) ListInvoices(ctx context.Context, session *model.PortalSession) ([]model.Invoice, error) {
	invoices, err := s.invoiceRepo.ListByOwner(ctx, session.CompanyID, session.ClientID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return invoices, nil
}
