package mocks

import (
	"context"
	"time"

	"go-raffle-api/internal/model"
	"go-raffle-api/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockTicketRepository struct {
	mock.Mock
}

var _ repository.TicketRepository = (*MockTicketRepository)(nil)

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) EnsurePool(ctx context.Context, size int) error {
	args := m.Called(ctx, size)
	return args.Error(0)
}

func (m *MockTicketRepository) FindByNumbers(ctx context.Context, numbers []int) ([]*model.Ticket, error) {
	args := m.Called(ctx, numbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Count(ctx context.Context, filter model.TicketFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketRepository) CommitSale(ctx context.Context, numbers []int, buyer string, soldAt time.Time) error {
	args := m.Called(ctx, numbers, buyer, soldAt)
	return args.Error(0)
}

func (m *MockTicketRepository) ResetAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockSaleLogRepository struct {
	mock.Mock
}

var _ repository.SaleLogRepository = (*MockSaleLogRepository)(nil)

func NewMockSaleLogRepository() *MockSaleLogRepository {
	return &MockSaleLogRepository{}
}

func (m *MockSaleLogRepository) Append(ctx context.Context, record *model.SaleRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSaleLogRepository) List(ctx context.Context) ([]*model.SaleRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.SaleRecord), args.Error(1)
}
