package repository

import (
	"context"
	"fmt"
	"go-raffle-api/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SaleLogRepository 銷售流水帳。僅作事後紀錄，票券狀態的真相只在票池。
type SaleLogRepository interface {
	Append(ctx context.Context, record *model.SaleRecord) error
	List(ctx context.Context) ([]*model.SaleRecord, error)
}

type SaleLogRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewSaleLogRepository(pool *pgxpool.Pool) SaleLogRepository {
	return &SaleLogRepositoryImpl{
		pool: pool,
	}
}

func (r *SaleLogRepositoryImpl) Append(ctx context.Context, record *model.SaleRecord) error {
	query := `
		INSERT INTO sales_log (
			sale_id, numbers, buyer, total, sold_at, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		record.SaleID, record.Numbers, record.Buyer,
		record.Total, record.SoldAt, record.RecordedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append sale record: %w", err)
	}

	return nil
}

func (r *SaleLogRepositoryImpl) List(ctx context.Context) ([]*model.SaleRecord, error) {
	query := `
		SELECT sale_id, numbers, buyer, total, sold_at, recorded_at
		FROM sales_log
		ORDER BY recorded_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*model.SaleRecord, 0)

	for rows.Next() {
		var record model.SaleRecord
		err := rows.Scan(
			&record.SaleID,
			&record.Numbers,
			&record.Buyer,
			&record.Total,
			&record.SoldAt,
			&record.RecordedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
