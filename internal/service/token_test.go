package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/craftbooks/portal-server-go/internal/errors"
	"github.com/craftbooks/portal-server-go/internal/mailer"
	"github.com/craftbooks/portal-server-go/internal/model"
	"github.com/craftbooks/portal-server-go/internal/util"
)

func TestIssueToken(t *testing.T) {
	t.Run("persists hash, scope and expiry", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)

		var captured model.CreatePortalTokenParams
		tokenRepo.On("Create", mock.Anything, mock.MatchedBy(func(p model.CreatePortalTokenParams) bool {
			captured = p
			return true
		})).Return(&model.PortalToken{ID: "tok-1", CompanyID: "c1", ClientID: "cl1"}, nil)

		svc := NewTokenService(tokenRepo, &mockMailer{}, "https://portal.example.com", 7*24*time.Hour)

		token, raw, err := svc.IssueToken(context.Background(), "c1", "cl1", "client@example.com")
		require.NoError(t, err)

		assert.Equal(t, "tok-1", token.ID)
		assert.Len(t, raw, 64)
		assert.Equal(t, util.HashToken(raw), captured.TokenHash)
		assert.NotEqual(t, raw, captured.TokenHash)
		assert.Equal(t, "c1", captured.CompanyID)
		assert.Equal(t, "cl1", captured.ClientID)
		assert.Equal(t, "client@example.com", captured.Email)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), captured.ExpiresAt, time.Minute)
	})

	t.Run("store failure surfaces as database error", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed"))

		svc := NewTokenService(tokenRepo, &mockMailer{}, "https://portal.example.com", time.Hour)

		_, _, err := svc.IssueToken(context.Background(), "c1", "cl1", "client@example.com")
		assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.GetCode(err))
	})
}

func TestCreateLink(t *testing.T) {
	t.Run("returns the link without mailing anything", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		linkMailer := new(mockMailer)

		tokenRepo.On("Create", mock.Anything, mock.Anything).
			Return(&model.PortalToken{ID: "tok-1"}, nil)

		svc := NewTokenService(tokenRepo, linkMailer, "https://portal.example.com", time.Hour)

		tokenID, link, err := svc.CreateLink(context.Background(), "c1", "cl1", "client@example.com")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tokenID)
		assert.Regexp(t, `^https://portal\.example\.com/portal\?token=[0-9a-f]{64}$`, link)
		linkMailer.AssertNotCalled(t, "SendPortalLink")
	})
}

func TestSendLink(t *testing.T) {
	t.Run("mails the composed link and returns the token id", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		linkMailer := new(mockMailer)

		tokenRepo.On("Create", mock.Anything, mock.Anything).
			Return(&model.PortalToken{ID: "tok-1"}, nil)

		var sent mailer.PortalLinkMessage
		linkMailer.On("SendPortalLink", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				sent = args.Get(1).(mailer.PortalLinkMessage)
			}).Return(nil)

		svc := NewTokenService(tokenRepo, linkMailer, "https://portal.example.com", time.Hour)

		tokenID, err := svc.SendLink(context.Background(), "c1", "cl1", "client@example.com", "Acme Plumbing")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tokenID)

		assert.Equal(t, "client@example.com", sent.To)
		assert.Equal(t, "Acme Plumbing", sent.CompanyName)
		assert.Regexp(t, `^https://portal\.example\.com/portal\?token=[0-9a-f]{64}$`, sent.Link)
	})

	t.Run("mailer failure surfaces as mailer error", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		linkMailer := new(mockMailer)

		tokenRepo.On("Create", mock.Anything, mock.Anything).
			Return(&model.PortalToken{ID: "tok-1"}, nil)
		linkMailer.On("SendPortalLink", mock.Anything, mock.Anything).
			Return(errors.New("mail API unreachable"))

		svc := NewTokenService(tokenRepo, linkMailer, "https://portal.example.com", time.Hour)

		_, err := svc.SendLink(context.Background(), "c1", "cl1", "client@example.com", "")
		assert.Equal(t, apperrors.ErrCodeMailer, apperrors.GetCode(err))
	})
}

func TestResolve(t *testing.T) {
	activeToken := &model.PortalToken{
		ID:        "tok-1",
		CompanyID: "c1",
		ClientID:  "cl1",
		Email:     "client@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	t.Run("valid token yields a session with the token's scope", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("FindActiveByHash", mock.Anything, util.HashToken("raw-secret")).
			Return(activeToken, nil)

		svc := NewTokenService(tokenRepo, &mockMailer{}, "https://portal.example.com", time.Hour)

		session, err := svc.Resolve(context.Background(), "raw-secret")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", session.TokenID)
		assert.Equal(t, "c1", session.CompanyID)
		assert.Equal(t, "cl1", session.ClientID)
		assert.Equal(t, "client@example.com", session.Email)
	})

	t.Run("repeated resolution always yields the same scope", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("FindActiveByHash", mock.Anything, util.HashToken("raw-secret")).
			Return(activeToken, nil)

		svc := NewTokenService(tokenRepo, &mockMailer{}, "https://portal.example.com", time.Hour)

		for i := 0; i < 5; i++ {
			session, err := svc.Resolve(context.Background(), "raw-secret")
			require.NoError(t, err)
			assert.Equal(t, "c1", session.CompanyID)
			assert.Equal(t, "cl1", session.ClientID)
		}
	})

	t.Run("unknown and expired tokens fail identically", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		// The repository returns nil for both cases; the service cannot
		// tell them apart and neither can the caller.
		tokenRepo.On("FindActiveByHash", mock.Anything, mock.Anything).Return(nil, nil)

		svc := NewTokenService(tokenRepo, &mockMailer{}, "https://portal.example.com", time.Hour)

		_, errUnknown := svc.Resolve(context.Background(), "never-issued")
		_, errExpired := svc.Resolve(context.Background(), "issued-but-expired")

		require.Error(t, errUnknown)
		require.Error(t, errExpired)
		assert.Equal(t, errUnknown.Error(), errExpired.Error())
		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(errUnknown))
		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(errExpired))
	})

	t.Run("empty token fails without touching the store", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		svc := NewTokenService(tokenRepo, &mockMailer{}, "https://portal.example.com", time.Hour)

		_, err := svc.Resolve(context.Background(), "")
		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
		tokenRepo.AssertNotCalled(t, "FindActiveByHash")
	})

	t.Run("store failure surfaces as database error", func(t *testing.T) {
		tokenRepo := new(mockTokenRepo)
		tokenRepo.On("FindActiveByHash", mock.Anything, mock.Anything).
			Return(nil, errors.New("connection reset"))

		svc := NewTokenService(tokenRepo, &mockMailer{}, "https://portal.example.com", time.Hour)

		_, err := svc.Resolve(context.Background(), "raw-secret")
		assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.GetCode(err))
	})
}
