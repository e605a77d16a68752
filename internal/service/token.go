package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/craftbooks/portal-server-go/internal/audit"
	apperrors "github.com/craftbooks/portal-server-go/internal/errors"
	"github.com/craftbooks/portal-server-go/internal/mailer"
	"github.com/craftbooks/portal-server-go/internal/model"
	"github.com/craftbooks/portal-server-go/internal/repository"
	"github.com/craftbooks/portal-server-go/internal/util"
)

// TokenService issues portal tokens, mails the links that carry them, and
// resolves presented token values into per-request sessions.
type TokenService struct {
	tokenRepo     repository.PortalTokenRepository
	linkMailer    mailer.LinkMailer
	portalBaseURL string
	tokenTTL      time.Duration
}

func NewTokenService(
	tokenRepo repository.PortalTokenRepository,
	linkMailer mailer.LinkMailer,
	portalBaseURL string,
	tokenTTL time.Duration,
) *TokenService {
	return &TokenService{
		tokenRepo:     tokenRepo,
		linkMailer:    linkMailer,
		portalBaseURL: portalBaseURL,
		tokenTTL:      tokenTTL,
	}
}

// IssueToken creates and persists a token bound to (companyID, clientID, email)
// and returns the record together with the raw secret value. The raw value is
// not stored; it survives only in the link handed to the mailer. Existing live
// tokens for the same pair stay valid, so a link can be re-sent without
// cutting off a prior one.
//
// companyID and clientID are taken as given; resolving them against real
// records is the caller's concern.
func (s *TokenService) IssueToken(ctx context.Context, companyID, clientID, email string) (*model.PortalToken, string, error) {
	raw, err := util.GenerateToken()
	if err != nil {
		return nil, "", apperrors.Internal("Failed to generate token").WithCause(err)
	}

	token, err := s.tokenRepo.Create(ctx, model.CreatePortalTokenParams{
		ID:        uuid.NewString(),
		TokenHash: util.HashToken(raw),
		CompanyID: companyID,
		ClientID:  clientID,
		Email:     email,
		ExpiresAt: time.Now().Add(s.tokenTTL),
	})
	if err != nil {
		return nil, "", apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventTokenIssued,
		CompanyID: companyID,
		ClientID:  clientID,
		Details:   map[string]interface{}{"token_id": token.ID},
	})

	return token, raw, nil
}

// CreateLink issues a fresh token and returns its id plus the full portal
// link without mailing anything. This is the share path: the caller hands
// the link over out of band.
func (s *TokenService) CreateLink(ctx context.Context, companyID, clientID, email string) (string, string, error) {
	token, raw, err := s.IssueToken(ctx, companyID, clientID, email)
	if err != nil {
		return "", "", err
	}
	return token.ID, fmt.Sprintf("%s/portal?token=%s", s.portalBaseURL, raw), nil
}

// SendLink issues a fresh token and hands the composed portal link to the
// mail collaborator. Returns the new token's id.
func (s *TokenService) SendLink(ctx context.Context, companyID, clientID, email, companyName string) (string, error) {
	tokenID, link, err := s.CreateLink(ctx, companyID, clientID, email)
	if err != nil {
		return "", err
	}

	if err := s.linkMailer.SendPortalLink(ctx, mailer.PortalLinkMessage{
		To:          email,
		CompanyName: companyName,
		Link:        link,
	}); err != nil {
		return "", apperrors.Mailer(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventLinkSent,
		CompanyID: companyID,
		ClientID:  clientID,
		Details:   map[string]interface{}{"token_id": tokenID},
	})

	return tokenID, nil
}

// Resolve derives a session from a presented token value. Unknown and
// expired values fail identically; nothing about the token's existence
// leaks to the caller. Resolution never mutates the token.
func (s *TokenService) Resolve(ctx context.Context, rawToken string) (*model.PortalSession, error) {
	if rawToken == "" {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	token, err := s.tokenRepo.FindActiveByHash(ctx, util.HashToken(rawToken))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if token == nil {
		log.Warn().Str("token", util.MaskToken(rawToken)).Msg("portal token rejected")
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	return &model.PortalSession{
		TokenID:   token.ID,
		CompanyID: token.CompanyID,
		ClientID:  token.ClientID,
		Email:     token.Email,
		ExpiresAt: token.ExpiresAt,
	}, nil
}
