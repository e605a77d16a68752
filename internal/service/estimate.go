package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/craftbooks/portal-server-go/internal/audit"
	apperrors "github.com/craftbooks/portal-server-go/internal/errors"
	"github.com/craftbooks/portal-server-go/internal/model"
	"github.com/craftbooks/portal-server-go/internal/repository"
)

// EstimateService owns the client-facing estimate decision flow. The flow
// never creates estimates; it only moves a pending one to approved or
// rejected, and either direction is terminal.
type EstimateService struct {
	estimateRepo repository.EstimateRepository
}

func NewEstimateService(estimateRepo repository.EstimateRepository) *EstimateService {
	return &EstimateService{estimateRepo: estimateRepo}
}

// Approve transitions a pending estimate to approved on behalf of the
// session's client. The status precondition and the write are one
// conditional update, so of two concurrent approvals exactly one wins;
// the loser observes the already-decided row and gets Conflict.
func (s *EstimateService) Approve(ctx context.Context, estimateID string, session *model.PortalSession) error {
	return s.decide(ctx, estimateID, session, model.EstimateStatusApproved)
}

// Reject is the mirror transition to rejected, with the same ownership
// and concurrency behavior.
func (s *EstimateService) Reject(ctx context.Context, estimateID string, session *model.PortalSession) error {
	return s.decide(ctx, estimateID, session, model.EstimateStatusRejected)
}

func (s *EstimateService) decide(ctx context.Context, estimateID string, session *model.PortalSession, status model.EstimateStatus) error {
	estimate, err := s.estimateRepo.FindByID(ctx, estimateID)
	if err != nil {
		return apperrors.Database(err)
	}

	// Ownership first: an estimate that is absent or belongs to someone
	// else fails the same way.
	if estimate == nil || estimate.CompanyID != session.CompanyID || estimate.ClientID != session.ClientID {
		audit.Log(ctx, audit.Event{
			Type:      audit.EventOwnershipDenied,
			CompanyID: session.CompanyID,
			ClientID:  session.ClientID,
			Details:   map[string]interface{}{"resource": "estimate", "estimate_id": estimateID},
		})
		return apperrors.Forbidden(accessDeniedMessage)
	}

	if !estimate.IsActionable() {
		return apperrors.Conflict(conflictMessage(status))
	}

	ok, err := s.estimateRepo.DecideIfPending(ctx, estimateID, session.CompanyID, session.ClientID, status, session.ClientID)
	if err != nil {
		return apperrors.Database(err)
	}
	if !ok {
		// A concurrent decision landed between the read and the update.
		log.Info().Str("estimateId", estimateID).Msg("estimate decision lost the race")
		return apperrors.Conflict(conflictMessage(status))
	}

	eventType := audit.EventEstimateApproved
	if status == model.EstimateStatusRejected {
		eventType = audit.EventEstimateRejected
	}
	audit.Log(ctx, audit.Event{
		Type:      eventType,
		CompanyID: session.CompanyID,
		ClientID:  session.ClientID,
		Details:   map[string]interface{}{"estimate_id": estimateID},
	})

	return nil
}

func conflictMessage(status model.EstimateStatus) string {
	if status == model.EstimateStatusRejected {
		return "Cannot reject estimate in its current state"
	}
	return "Cannot approve estimate in its current state"
}
