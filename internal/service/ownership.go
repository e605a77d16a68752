package service

import (
	"context"

	"github.com/craftbooks/portal-server-go/internal/audit"
	apperrors "github.com/craftbooks/portal-server-go/internal/errors"
	"github.com/craftbooks/portal-server-go/internal/model"
)

// accessDeniedMessage is deliberately generic: it says nothing about the
// resource or who owns it.
const accessDeniedMessage = "Access denied"

// checkOwnership applies the single denial policy for every accessor:
// a resource the session's company does not own (or, where the resource
// carries a client, the session's client does not own) yields Forbidden.
// Absence is handled by the caller as NotFound before this check runs.
func checkOwnership(ctx context.Context, session *model.PortalSession, resource string, companyID string, clientID *string) error {
	if session == nil {
		return apperrors.Unauthorized("Unauthorized")
	}

	owned := companyID == session.CompanyID
	if owned && clientID != nil {
		owned = *clientID == session.ClientID
	}
	if owned {
		return nil
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventOwnershipDenied,
		CompanyID: session.CompanyID,
		ClientID:  session.ClientID,
		Details:   map[string]interface{}{"resource": resource},
	})
	return apperrors.Forbidden(accessDeniedMessage)
}
