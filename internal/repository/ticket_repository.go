package repository

import (
	"context"
	"fmt"
	"go-raffle-api/internal/model"
	apperrors "go-raffle-api/pkg/app_errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	// EnsurePool 票池為空時建立 1..size 的票券，已有票券則不動
	EnsurePool(ctx context.Context, size int) error

	FindByNumbers(ctx context.Context, numbers []int) ([]*model.Ticket, error)
	List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error)
	Count(ctx context.Context, filter model.TicketFilter) (int, error)

	// CommitSale 原子性售出整批票號：全部成功或完全不動。
	// 缺號回傳 UnknownTicketError，任一已售出回傳 AlreadySoldError（列出全部衝突票號）。
	CommitSale(ctx context.Context, numbers []int, buyer string, soldAt time.Time) error

	// ResetAll 清除所有售出狀態，回傳被重置的票數
	ResetAll(ctx context.Context) (int, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func (r *TicketRepositoryImpl) EnsurePool(ctx context.Context, size int) error {
	if size <= 0 {
		return apperrors.ErrInvalidInput
	}

	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count)
	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	query := `
		INSERT INTO tickets (number)
		SELECT generate_series(1, $1)
		ON CONFLICT (number) DO NOTHING
	`

	_, err = r.pool.Exec(ctx, query, size)
	return err
}

func (r *TicketRepositoryImpl) FindByNumbers(ctx context.Context, numbers []int) ([]*model.Ticket, error) {
	query := `
		SELECT number, sold, buyer, sold_at
		FROM tickets
		WHERE number = ANY($1)
		ORDER BY number
	`

	rows, err := r.pool.Query(ctx, query, numbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0, len(numbers))

	for rows.Next() {
		var ticket model.Ticket
		err := rows.Scan(
			&ticket.Number,
			&ticket.Sold,
			&ticket.Buyer,
			&ticket.SoldAt,
		)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	query := `
		SELECT number, sold, buyer, sold_at
		FROM tickets
	` + filterClause(filter) + `
		ORDER BY number
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)

	for rows.Next() {
		var ticket model.Ticket
		err := rows.Scan(
			&ticket.Number,
			&ticket.Sold,
			&ticket.Buyer,
			&ticket.SoldAt,
		)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) Count(ctx context.Context, filter model.TicketFilter) (int, error) {
	query := `SELECT COUNT(*) FROM tickets` + filterClause(filter)

	var count int
	err := r.pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *TicketRepositoryImpl) CommitSale(ctx context.Context, numbers []int, buyer string, soldAt time.Time) error {
	if len(numbers) == 0 {
		return apperrors.ErrInvalidInput
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// 依票號遞增鎖定，重疊請求取得鎖的順序一致，避免死鎖
	query := `
		SELECT number, sold
		FROM tickets
		WHERE number = ANY($1)
		ORDER BY number
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, numbers)
	if err != nil {
		return err
	}

	locked := make(map[int]bool, len(numbers))
	conflicts := make([]int, 0)

	for rows.Next() {
		var number int
		var sold bool
		if err := rows.Scan(&number, &sold); err != nil {
			rows.Close()
			return err
		}
		locked[number] = true
		if sold {
			conflicts = append(conflicts, number)
		}
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return err
	}

	if len(locked) < len(numbers) {
		missing := make([]int, 0, len(numbers)-len(locked))
		for _, n := range numbers {
			if !locked[n] {
				missing = append(missing, n)
			}
		}
		return &apperrors.UnknownTicketError{Numbers: missing}
	}

	if len(conflicts) > 0 {
		return &apperrors.AlreadySoldError{Numbers: conflicts}
	}

	update := `
		UPDATE tickets
		SET sold = TRUE, buyer = $2, sold_at = $3
		WHERE number = ANY($1) AND sold = FALSE
	`

	result, err := tx.Exec(ctx, update, numbers, buyer, soldAt)
	if err != nil {
		return err
	}

	// 已全數鎖定且確認可售，更新數不符代表狀態異常
	if int(result.RowsAffected()) != len(numbers) {
		return fmt.Errorf("commit sale: expected %d rows, updated %d", len(numbers), result.RowsAffected())
	}

	return tx.Commit(ctx)
}

func (r *TicketRepositoryImpl) ResetAll(ctx context.Context) (int, error) {
	query := `
		UPDATE tickets
		SET sold = FALSE, buyer = NULL, sold_at = NULL
		WHERE sold = TRUE
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}

func filterClause(filter model.TicketFilter) string {
	switch filter {
	case model.FilterSold:
		return ` WHERE sold = TRUE`
	case model.FilterAvailable:
		return ` WHERE sold = FALSE`
	default:
		return ``
	}
}
