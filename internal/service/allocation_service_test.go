package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-raffle-api/internal/clock"
	"go-raffle-api/internal/model"
	"go-raffle-api/internal/queue"
	queueMocks "go-raffle-api/internal/queue/mocks"
	"go-raffle-api/internal/repository"
	repoMocks "go-raffle-api/internal/repository/mocks"
	"go-raffle-api/internal/service"
	apperrors "go-raffle-api/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testUnitPrice = 20.0

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// setupAllocation 以記憶體票池與記憶體佇列組出真實的配票服務
func setupAllocation(t *testing.T, poolSize int) (service.AllocationService, *repository.MemoryTicketRepository) {
	t.Helper()
	repo := repository.NewMemoryTicketRepository()
	require.NoError(t, repo.EnsurePool(context.Background(), poolSize))
	q := queue.NewSaleQueue(16)
	svc := service.NewAllocationService(repo, q, clock.NewFixed(fixedNow), testUnitPrice)
	return svc, repo
}

func TestAllocationService_Purchase(t *testing.T) {
	ctx := context.Background()

	// 池子 5 張全可售，Alice 買 {2,3} 應成交，listSold 回傳 2、3 且買家為 Alice
	t.Run("Success", func(t *testing.T) {
		svc, repo := setupAllocation(t, 5)

		receipt, err := svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{2, 3}, Buyer: "Alice"})

		require.NoError(t, err)
		require.NotNil(t, receipt)
		assert.Equal(t, []int{2, 3}, receipt.Numbers)
		assert.Equal(t, "Alice", receipt.Buyer)
		assert.Equal(t, 40.0, receipt.Total)
		assert.Equal(t, fixedNow, receipt.SoldAt)

		sold, err := repo.List(ctx, model.FilterSold)
		require.NoError(t, err)
		require.Len(t, sold, 2)
		assert.Equal(t, 2, sold[0].Number)
		assert.Equal(t, 3, sold[1].Number)
		for _, ticket := range sold {
			require.NotNil(t, ticket.Buyer)
			assert.Equal(t, "Alice", *ticket.Buyer)
			require.NotNil(t, ticket.SoldAt)
			assert.Equal(t, fixedNow, *ticket.SoldAt)
		}
	})

	// 請求語意為集合：重複票號去重後成交
	t.Run("Success - DuplicateNumbersDeduplicated", func(t *testing.T) {
		svc, repo := setupAllocation(t, 5)

		receipt, err := svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{3, 2, 3, 2}, Buyer: "Alice"})

		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, receipt.Numbers)
		assert.Equal(t, 40.0, receipt.Total)

		sold, err := repo.Count(ctx, model.FilterSold)
		require.NoError(t, err)
		assert.Equal(t, 2, sold)
	})

	t.Run("Success - BuyerTrimmed", func(t *testing.T) {
		svc, repo := setupAllocation(t, 5)

		receipt, err := svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{1}, Buyer: "  Alice  "})

		require.NoError(t, err)
		assert.Equal(t, "Alice", receipt.Buyer)

		tickets, err := repo.FindByNumbers(ctx, []int{1})
		require.NoError(t, err)
		require.NotNil(t, tickets[0].Buyer)
		assert.Equal(t, "Alice", *tickets[0].Buyer)
	})

	// Alice 已買走 3，Bob 買 {3,4} 整批失敗並指名 3；無衝突的 4 也不能售出
	t.Run("Failed - AlreadySoldNamesEveryConflict", func(t *testing.T) {
		svc, repo := setupAllocation(t, 5)
		_, err := svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{2, 3}, Buyer: "Alice"})
		require.NoError(t, err)

		_, err = svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{3, 4}, Buyer: "Bob"})

		require.Error(t, err)
		var soldErr *apperrors.AlreadySoldError
		require.ErrorAs(t, err, &soldErr)
		assert.Equal(t, []int{3}, soldErr.Numbers)

		tickets, err := repo.FindByNumbers(ctx, []int{4})
		require.NoError(t, err)
		assert.False(t, tickets[0].Sold, "無衝突的 4 應維持可售")
	})

	// 5 張的池子買 99 號：UnknownTicket 指名 99，目錄完全不變
	t.Run("Failed - UnknownTicket", func(t *testing.T) {
		svc, repo := setupAllocation(t, 5)

		before, err := repo.List(ctx, model.FilterAll)
		require.NoError(t, err)

		_, err = svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{99}, Buyer: "Alice"})

		require.Error(t, err)
		var unknownErr *apperrors.UnknownTicketError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, []int{99}, unknownErr.Numbers)

		after, err := repo.List(ctx, model.FilterAll)
		require.NoError(t, err)
		assert.Equal(t, before, after, "失敗的請求不得留下任何變更")
	})

	// 池內票號混雜池外票號：整批失敗，池內的也不能售出
	t.Run("Failed - UnknownTicketMixedWithValid", func(t *testing.T) {
		svc, repo := setupAllocation(t, 5)

		_, err := svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{2, 99, 100}, Buyer: "Alice"})

		require.Error(t, err)
		var unknownErr *apperrors.UnknownTicketError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, []int{99, 100}, unknownErr.Numbers)

		sold, err := repo.Count(ctx, model.FilterSold)
		require.NoError(t, err)
		assert.Equal(t, 0, sold)
	})

	// 購買不具冪等性：成功後重送同一筆請求視為新的衝突嘗試
	t.Run("Failed - RetryAfterSuccessConflicts", func(t *testing.T) {
		svc, _ := setupAllocation(t, 5)
		req := model.PurchaseRequest{Numbers: []int{1, 2}, Buyer: "Alice"}

		_, err := svc.Purchase(ctx, req)
		require.NoError(t, err)

		_, err = svc.Purchase(ctx, req)

		require.Error(t, err)
		var soldErr *apperrors.AlreadySoldError
		require.ErrorAs(t, err, &soldErr)
		assert.Equal(t, []int{1, 2}, soldErr.Numbers)
	})
}

// 驗證失敗要在碰到票池之前擋下
func TestAllocationService_Purchase_Validation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		req  model.PurchaseRequest
	}{
		{"Failed - EmptyNumbers", model.PurchaseRequest{Numbers: []int{}, Buyer: "Alice"}},
		{"Failed - BlankBuyer", model.PurchaseRequest{Numbers: []int{1}, Buyer: "   "}},
		{"Failed - NonPositiveNumber", model.PurchaseRequest{Numbers: []int{1, 0}, Buyer: "Alice"}},
		{"Failed - NegativeNumber", model.PurchaseRequest{Numbers: []int{-3}, Buyer: "Alice"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := repoMocks.NewMockTicketRepository()
			mockQueue := queueMocks.NewMockSaleQueue()
			svc := service.NewAllocationService(mockRepo, mockQueue, clock.NewFixed(fixedNow), testUnitPrice)

			_, err := svc.Purchase(ctx, tc.req)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

			var validationErr *apperrors.ValidationError
			assert.ErrorAs(t, err, &validationErr)

			// 驗證 Mock 是否按照預期運作：驗證失敗不得觸發任何 store 操作
			mockRepo.AssertNotCalled(t, "FindByNumbers")
			mockRepo.AssertNotCalled(t, "CommitSale")
			mockQueue.AssertNotCalled(t, "PublishSale")
		})
	}
}

// 預檢通過但提交時輸掉競爭：票池回報的 AlreadySold 原樣浮出，事件不得發佈
func TestAllocationService_Purchase_CommitRaceSurfacesConflict(t *testing.T) {
	ctx := context.Background()

	mockRepo := repoMocks.NewMockTicketRepository()
	mockQueue := queueMocks.NewMockSaleQueue()
	svc := service.NewAllocationService(mockRepo, mockQueue, clock.NewFixed(fixedNow), testUnitPrice)

	mockRepo.On("FindByNumbers", mock.Anything, []int{5}).
		Return([]*model.Ticket{{Number: 5}}, nil).Once()
	mockRepo.On("CommitSale", mock.Anything, []int{5}, "Bob", fixedNow).
		Return(&apperrors.AlreadySoldError{Numbers: []int{5}}).Once()

	_, err := svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{5}, Buyer: "Bob"})

	require.Error(t, err)
	var soldErr *apperrors.AlreadySoldError
	require.ErrorAs(t, err, &soldErr)
	assert.Equal(t, []int{5}, soldErr.Numbers)

	mockRepo.AssertExpectations(t)
	mockQueue.AssertNotCalled(t, "PublishSale")
}

func TestAllocationService_Purchase_StoreUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("Failed - FindByNumbers", func(t *testing.T) {
		mockRepo := repoMocks.NewMockTicketRepository()
		mockQueue := queueMocks.NewMockSaleQueue()
		svc := service.NewAllocationService(mockRepo, mockQueue, clock.NewFixed(fixedNow), testUnitPrice)

		mockRepo.On("FindByNumbers", mock.Anything, []int{1}).
			Return(nil, errors.New("connection refused")).Once()

		_, err := svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{1}, Buyer: "Alice"})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failed - CommitSaleTransportError", func(t *testing.T) {
		mockRepo := repoMocks.NewMockTicketRepository()
		mockQueue := queueMocks.NewMockSaleQueue()
		svc := service.NewAllocationService(mockRepo, mockQueue, clock.NewFixed(fixedNow), testUnitPrice)

		mockRepo.On("FindByNumbers", mock.Anything, []int{1}).
			Return([]*model.Ticket{{Number: 1}}, nil).Once()
		mockRepo.On("CommitSale", mock.Anything, []int{1}, "Alice", fixedNow).
			Return(errors.New("timeout")).Once()

		_, err := svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{1}, Buyer: "Alice"})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)

		mockRepo.AssertExpectations(t)
		mockQueue.AssertNotCalled(t, "PublishSale")
	})
}

// 成交已落定後流水發佈失敗只記 log，不影響購買結果
func TestAllocationService_Purchase_PublishFailureDoesNotFailPurchase(t *testing.T) {
	ctx := context.Background()

	repo := repository.NewMemoryTicketRepository()
	require.NoError(t, repo.EnsurePool(ctx, 5))

	mockQueue := queueMocks.NewMockSaleQueue()
	mockQueue.On("PublishSale", mock.Anything, mock.Anything).
		Return(errors.New("mq down")).Once()

	svc := service.NewAllocationService(repo, mockQueue, clock.NewFixed(fixedNow), testUnitPrice)

	receipt, err := svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{2, 3}, Buyer: "Alice"})

	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, receipt.Numbers)

	sold, err := repo.Count(ctx, model.FilterSold)
	require.NoError(t, err)
	assert.Equal(t, 2, sold)

	mockQueue.AssertExpectations(t)
}

// 成交後發佈到佇列的事件內容要跟回執一致
func TestAllocationService_Purchase_PublishesSaleEvent(t *testing.T) {
	ctx := context.Background()

	repo := repository.NewMemoryTicketRepository()
	require.NoError(t, repo.EnsurePool(ctx, 5))

	q := queue.NewSaleQueue(4)
	svc := service.NewAllocationService(repo, q, clock.NewFixed(fixedNow), testUnitPrice)

	subCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	deliveries, err := q.SubscribeSales(subCtx)
	require.NoError(t, err)

	receipt, err := svc.Purchase(ctx, model.PurchaseRequest{Numbers: []int{4, 1}, Buyer: "Alice"})
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		require.NotNil(t, d.Data)
		assert.NotEmpty(t, d.Data.SaleID)
		assert.Equal(t, receipt.Numbers, d.Data.Numbers)
		assert.Equal(t, "Alice", d.Data.Buyer)
		assert.Equal(t, receipt.Total, d.Data.Total)
		assert.Equal(t, fixedNow, d.Data.SoldAt)
		d.Ack()
	case <-subCtx.Done():
		t.Fatal("timeout 未收到售出事件")
	}
}
