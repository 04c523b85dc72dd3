package repository

import (
	"context"
	"sync"

	"go-raffle-api/internal/model"
)

// MemorySaleLogRepository 記憶體流水帳，依寫入順序保存
type MemorySaleLogRepository struct {
	mu      sync.Mutex
	records []*model.SaleRecord
}

var _ SaleLogRepository = (*MemorySaleLogRepository)(nil)

func NewMemorySaleLogRepository() *MemorySaleLogRepository {
	return &MemorySaleLogRepository{
		records: make([]*model.SaleRecord, 0),
	}
}

func (r *MemorySaleLogRepository) Append(ctx context.Context, record *model.SaleRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *record
	copied.Numbers = append([]int(nil), record.Numbers...)
	r.records = append(r.records, &copied)

	return nil
}

func (r *MemorySaleLogRepository) List(ctx context.Context) ([]*model.SaleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]*model.SaleRecord, 0, len(r.records))
	for _, record := range r.records {
		copied := *record
		copied.Numbers = append([]int(nil), record.Numbers...)
		records = append(records, &copied)
	}

	return records, nil
}
