package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-raffle-api/internal/model"
	apperrors "go-raffle-api/pkg/app_errors"
)

// MemoryTicketRepository 純記憶體票池，單一互斥鎖保證批次操作的原子性。
// 測試與免外部依賴部署的預設後端。
type MemoryTicketRepository struct {
	mu      sync.Mutex
	tickets map[int]*model.Ticket
}

var _ TicketRepository = (*MemoryTicketRepository)(nil)

func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{
		tickets: make(map[int]*model.Ticket),
	}
}

func (r *MemoryTicketRepository) EnsurePool(ctx context.Context, size int) error {
	if size <= 0 {
		return apperrors.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.tickets) > 0 {
		return nil
	}

	for n := 1; n <= size; n++ {
		r.tickets[n] = &model.Ticket{Number: n}
	}

	return nil
}

func (r *MemoryTicketRepository) FindByNumbers(ctx context.Context, numbers []int) ([]*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tickets := make([]*model.Ticket, 0, len(numbers))
	for _, n := range numbers {
		if t, ok := r.tickets[n]; ok {
			copied := *t
			tickets = append(tickets, &copied)
		}
	}

	sort.Slice(tickets, func(i, j int) bool { return tickets[i].Number < tickets[j].Number })

	return tickets, nil
}

func (r *MemoryTicketRepository) List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tickets := make([]*model.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		if filter.Matches(t) {
			copied := *t
			tickets = append(tickets, &copied)
		}
	}

	sort.Slice(tickets, func(i, j int) bool { return tickets[i].Number < tickets[j].Number })

	return tickets, nil
}

func (r *MemoryTicketRepository) Count(ctx context.Context, filter model.TicketFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, t := range r.tickets {
		if filter.Matches(t) {
			count++
		}
	}

	return count, nil
}

func (r *MemoryTicketRepository) CommitSale(ctx context.Context, numbers []int, buyer string, soldAt time.Time) error {
	if len(numbers) == 0 {
		return apperrors.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// 先全部檢查再全部寫入，檢查失敗時不留任何變更
	missing := make([]int, 0)
	conflicts := make([]int, 0)

	for _, n := range numbers {
		t, ok := r.tickets[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		if t.Sold {
			conflicts = append(conflicts, n)
		}
	}

	if len(missing) > 0 {
		return &apperrors.UnknownTicketError{Numbers: missing}
	}

	if len(conflicts) > 0 {
		return &apperrors.AlreadySoldError{Numbers: conflicts}
	}

	for _, n := range numbers {
		r.tickets[n].MarkSold(buyer, soldAt)
	}

	return nil
}

func (r *MemoryTicketRepository) ResetAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, t := range r.tickets {
		if t.Sold {
			t.Release()
			count++
		}
	}

	return count, nil
}
