package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/craftbooks/portal-server-go/internal/gateway"
	"github.com/craftbooks/portal-server-go/internal/mailer"
	"github.com/craftbooks/portal-server-go/internal/model"
)

// Mock repositories and collaborators shared by the service tests.

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, params model.CreatePortalTokenParams) (*model.PortalToken, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PortalToken), args.Error(1)
}

func (m *mockTokenRepo) FindActiveByHash(ctx context.Context, tokenHash string) (*model.PortalToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PortalToken), args.Error(1)
}

func (m *mockTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *mockProjectRepo) ListByCompanyID(ctx context.Context, companyID string) ([]model.Project, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

type mockEstimateRepo struct {
	mock.Mock
}

func (m *mockEstimateRepo) FindByID(ctx context.Context, id string) (*model.Estimate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Estimate), args.Error(1)
}

func (m *mockEstimateRepo) ListByOwner(ctx context.Context, companyID, clientID string) ([]model.Estimate, error) {
	args := m.Called(ctx, companyID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Estimate), args.Error(1)
}

func (m *mockEstimateRepo) DecideIfPending(ctx context.Context, id, companyID, clientID string, status model.EstimateStatus, decidedBy string) (bool, error) {
	args := m.Called(ctx, id, companyID, clientID, status, decidedBy)
	return args.Bool(0), args.Error(1)
}

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) ListByOwner(ctx context.Context, companyID, clientID string) ([]model.Invoice, error) {
	args := m.Called(ctx, companyID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invoice), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateIntent(ctx context.Context, params gateway.CreateIntentParams) (*gateway.PaymentIntent, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PaymentIntent), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendPortalLink(ctx context.Context, msg mailer.PortalLinkMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
