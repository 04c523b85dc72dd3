package mocks

import (
	"context"

	"go-raffle-api/internal/model"
	"go-raffle-api/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAllocationService struct {
	mock.Mock
}

var _ service.AllocationService = (*MockAllocationService)(nil)

func NewMockAllocationService() *MockAllocationService {
	return &MockAllocationService{}
}

func (m *MockAllocationService) Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseReceipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseReceipt), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

var _ service.CatalogService = (*MockCatalogService)(nil)

func NewMockCatalogService() *MockCatalogService {
	return &MockCatalogService{}
}

func (m *MockCatalogService) List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *MockCatalogService) Stats(ctx context.Context) (*model.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stats), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

var _ service.AdminService = (*MockAdminService)(nil)

func NewMockAdminService() *MockAdminService {
	return &MockAdminService{}
}

func (m *MockAdminService) ResetAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAdminService) Sales(ctx context.Context) ([]*model.SaleRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SaleRecord), args.Error(1)
}
