package mocks

import (
	"context"

	"go-raffle-api/internal/model"
	"go-raffle-api/internal/queue"

	"github.com/stretchr/testify/mock"
)

type MockSaleQueue struct {
	mock.Mock
}

var _ queue.SaleQueue = (*MockSaleQueue)(nil)

func NewMockSaleQueue() *MockSaleQueue {
	return &MockSaleQueue{}
}

func (m *MockSaleQueue) PublishSale(ctx context.Context, event *model.SaleEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockSaleQueue) SubscribeSales(ctx context.Context) (<-chan queue.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan queue.Delivery), args.Error(1)
}
