package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go-raffle-api/internal/clock"
	"go-raffle-api/internal/model"
	"go-raffle-api/internal/queue"
	"go-raffle-api/internal/repository"
	apperrors "go-raffle-api/pkg/app_errors"
	"go-raffle-api/pkg/logger"
	"go-raffle-api/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllocationService 配票核心：決定一整批票號能否售出，能則原子性成交。
// 本身不做任何快取或鎖，每次決策都重讀票池，正確性完全依靠票池的原子提交。
type AllocationService interface {
	Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseReceipt, error)
}

type AllocationServiceImpl struct {
	repo      repository.TicketRepository
	saleQueue queue.SaleQueue
	clock     clock.Clock
	unitPrice float64
}

func NewAllocationService(
	repo repository.TicketRepository,
	saleQueue queue.SaleQueue,
	clk clock.Clock,
	unitPrice float64,
) AllocationService {
	return &AllocationServiceImpl{
		repo:      repo,
		saleQueue: saleQueue,
		clock:     clk,
		unitPrice: unitPrice,
	}
}

func (s *AllocationServiceImpl) Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseReceipt, error) {
	// 1. 正規化：票號排序去重（集合語意），買家名去除前後空白
	buyer := strings.TrimSpace(req.Buyer)
	numbers := normalizeNumbers(req.Numbers)

	// 2. 驗證，不碰票池
	if err := validatePurchase(numbers, buyer); err != nil {
		metrics.PurchaseAttempts.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	// 3. 只取請求的票號
	tickets, err := s.repo.FindByNumbers(ctx, numbers)
	if err != nil {
		metrics.PurchaseAttempts.WithLabelValues(metrics.OutcomeStoreError).Inc()
		return nil, apperrors.StoreUnavailable(err)
	}

	// 4. 缺號代表池中不存在
	if len(tickets) < len(numbers) {
		metrics.PurchaseAttempts.WithLabelValues(metrics.OutcomeUnknownTicket).Inc()
		return nil, &apperrors.UnknownTicketError{Numbers: missingNumbers(numbers, tickets)}
	}

	// 5. 任一已售出即整批失敗，列出全部衝突票號
	conflicts := make([]int, 0)
	for _, t := range tickets {
		if t.Sold {
			conflicts = append(conflicts, t.Number)
		}
	}
	if len(conflicts) > 0 {
		metrics.PurchaseAttempts.WithLabelValues(metrics.OutcomeConflict).Inc()
		return nil, &apperrors.AlreadySoldError{Numbers: conflicts}
	}

	// 6. 原子提交。並發競爭在這裡分勝負：輸家拿到票池回報的 AlreadySold。
	soldAt := s.clock.Now()
	if err := s.repo.CommitSale(ctx, numbers, buyer, soldAt); err != nil {
		return nil, s.classifyCommitError(err)
	}

	receipt := &model.PurchaseReceipt{
		Numbers: numbers,
		Buyer:   buyer,
		Total:   s.unitPrice * float64(len(numbers)),
		SoldAt:  soldAt,
	}

	// 7. 發佈售出事件。成交已落定，流水失敗只記 log 不影響結果。
	s.publishSale(ctx, receipt)

	metrics.PurchaseAttempts.WithLabelValues(metrics.OutcomeSold).Inc()
	metrics.TicketsSold.Add(float64(len(numbers)))

	return receipt, nil
}

func (s *AllocationServiceImpl) classifyCommitError(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrAlreadySold):
		metrics.PurchaseAttempts.WithLabelValues(metrics.OutcomeConflict).Inc()
		return err
	case errors.Is(err, apperrors.ErrUnknownTicket):
		metrics.PurchaseAttempts.WithLabelValues(metrics.OutcomeUnknownTicket).Inc()
		return err
	case errors.Is(err, apperrors.ErrInvalidInput):
		metrics.PurchaseAttempts.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return err
	default:
		metrics.PurchaseAttempts.WithLabelValues(metrics.OutcomeStoreError).Inc()
		return apperrors.StoreUnavailable(err)
	}
}

func (s *AllocationServiceImpl) publishSale(ctx context.Context, receipt *model.PurchaseReceipt) {
	event := &model.SaleEvent{
		SaleID:  uuid.New().String(),
		Numbers: receipt.Numbers,
		Buyer:   receipt.Buyer,
		Total:   receipt.Total,
		SoldAt:  receipt.SoldAt,
	}

	if err := s.saleQueue.PublishSale(ctx, event); err != nil {
		logger.WithComponent("service").Warn("publish sale event failed",
			zap.String("sale_id", event.SaleID), zap.Ints("numbers", event.Numbers), zap.Error(err))
	}
}

func validatePurchase(numbers []int, buyer string) error {
	if len(numbers) == 0 {
		return &apperrors.ValidationError{Reason: "numbers must not be empty"}
	}
	if buyer == "" {
		return &apperrors.ValidationError{Reason: "buyer must not be blank"}
	}
	for _, n := range numbers {
		if n < 1 {
			return &apperrors.ValidationError{Reason: fmt.Sprintf("ticket number must be positive, got %d", n)}
		}
	}
	return nil
}

// normalizeNumbers 排序去重，請求語意為集合
func normalizeNumbers(numbers []int) []int {
	seen := make(map[int]bool, len(numbers))
	out := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

func missingNumbers(requested []int, found []*model.Ticket) []int {
	present := make(map[int]bool, len(found))
	for _, t := range found {
		present[t.Number] = true
	}

	missing := make([]int, 0, len(requested)-len(found))
	for _, n := range requested {
		if !present[n] {
			missing = append(missing, n)
		}
	}

	return missing
}
