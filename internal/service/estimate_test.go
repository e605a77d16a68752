package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/craftbooks/portal-server-go/internal/errors"
	"github.com/craftbooks/portal-server-go/internal/model"
)

func pendingEstimate() *model.Estimate {
	return &model.Estimate{
		ID:        "est-1",
		CompanyID: "c1",
		ClientID:  "cl1",
		Status:    model.EstimateStatusPending,
	}
}

func TestApprove(t *testing.T) {
	t.Run("approves a pending estimate recording the client as actor", func(t *testing.T) {
		estimates := new(mockEstimateRepo)
		estimates.On("FindByID", mock.Anything, "est-1").Return(pendingEstimate(), nil)
		estimates.On("DecideIfPending", mock.Anything, "est-1", "c1", "cl1", model.EstimateStatusApproved, "cl1").
			Return(true, nil)

		svc := NewEstimateService(estimates)

		err := svc.Approve(context.Background(), "est-1", testSession())
		require.NoError(t, err)
		estimates.AssertExpectations(t)
	})

	t.Run("absent estimate is Forbidden", func(t *testing.T) {
		estimates := new(mockEstimateRepo)
		estimates.On("FindByID", mock.Anything, "est-missing").Return(nil, nil)

		svc := NewEstimateService(estimates)

		err := svc.Approve(context.Background(), "est-missing", testSession())
		assert.Equal(t, apperrors.ErrCodeForbidden, apperrors.GetCode(err))
		estimates.AssertNotCalled(t, "DecideIfPending")
	})

	t.Run("foreign estimate is Forbidden", func(t *testing.T) {
		estimates := new(mockEstimateRepo)
		est := pendingEstimate()
		est.ClientID = "other-client"
		estimates.On("FindByID", mock.Anything, "est-1").Return(est, nil)

		svc := NewEstimateService(estimates)

		err := svc.Approve(context.Background(), "est-1", testSession())
		assert.Equal(t, apperrors.ErrCodeForbidden, apperrors.GetCode(err))
		estimates.AssertNotCalled(t, "DecideIfPending")
	})

	t.Run("already approved estimate is Conflict", func(t *testing.T) {
		estimates := new(mockEstimateRepo)
		est := pendingEstimate()
		est.Status = model.EstimateStatusApproved
		estimates.On("FindByID", mock.Anything, "est-1").Return(est, nil)

		svc := NewEstimateService(estimates)

		err := svc.Approve(context.Background(), "est-1", testSession())
		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, "Cannot approve estimate in its current state", appErr.Message)
		estimates.AssertNotCalled(t, "DecideIfPending")
	})

	t.Run("expired estimate is Conflict", func(t *testing.T) {
		estimates := new(mockEstimateRepo)
		est := pendingEstimate()
		est.Status = model.EstimateStatusExpired
		estimates.On("FindByID", mock.Anything, "est-1").Return(est, nil)

		svc := NewEstimateService(estimates)

		err := svc.Approve(context.Background(), "est-1", testSession())
		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
	})

	t.Run("losing the conditional update is Conflict", func(t *testing.T) {
		// The read saw pending, but a concurrent approval landed first:
		// the conditional update matches zero rows and this call loses.
		estimates := new(mockEstimateRepo)
		estimates.On("FindByID", mock.Anything, "est-1").Return(pendingEstimate(), nil)
		estimates.On("DecideIfPending", mock.Anything, "est-1", "c1", "cl1", model.EstimateStatusApproved, "cl1").
			Return(false, nil)

		svc := NewEstimateService(estimates)

		err := svc.Approve(context.Background(), "est-1", testSession())
		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
	})

	t.Run("store failure surfaces as database error", func(t *testing.T) {
		estimates := new(mockEstimateRepo)
		estimates.On("FindByID", mock.Anything, "est-1").Return(pendingEstimate(), nil)
		estimates.On("DecideIfPending", mock.Anything, "est-1", "c1", "cl1", model.EstimateStatusApproved, "cl1").
			Return(false, errors.New("deadlock detected"))

		svc := NewEstimateService(estimates)

		err := svc.Approve(context.Background(), "est-1", testSession())
		assert.Equal(t, apperrors.ErrCodeDatabase, apperrors.GetCode(err))
	})
}

func TestReject(t *testing.T) {
	t.Run("rejects a pending estimate", func(t *testing.T) {
		estimates := new(mockEstimateRepo)
		estimates.On("FindByID", mock.Anything, "est-1").Return(pendingEstimate(), nil)
		estimates.On("DecideIfPending", mock.Anything, "est-1", "c1", "cl1", model.EstimateStatusRejected, "cl1").
			Return(true, nil)

		svc := NewEstimateService(estimates)

		err := svc.Reject(context.Background(), "est-1", testSession())
		require.NoError(t, err)
	})

	t.Run("already rejected estimate is Conflict", func(t *testing.T) {
		estimates := new(mockEstimateRepo)
		est := pendingEstimate()
		est.Status = model.EstimateStatusRejected
		estimates.On("FindByID", mock.Anything, "est-1").Return(est, nil)

		svc := NewEstimateService(estimates)

		err := svc.Reject(context.Background(), "est-1", testSession())
		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
		appErr, _ := apperrors.AsAppError(err)
		assert.Equal(t, "Cannot reject estimate in its current state", appErr.Message)
	})
}
