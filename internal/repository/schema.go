package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// 啟動時建表，冪等
const schemaDDL = `
	CREATE TABLE IF NOT EXISTS tickets (
		number  INTEGER PRIMARY KEY,
		sold    BOOLEAN NOT NULL DEFAULT FALSE,
		buyer   TEXT,
		sold_at TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS sales_log (
		sale_id     UUID PRIMARY KEY,
		numbers     INTEGER[] NOT NULL,
		buyer       TEXT NOT NULL,
		total       DOUBLE PRECISION NOT NULL,
		sold_at     TIMESTAMPTZ NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_tickets_sold ON tickets (sold);
	CREATE INDEX IF NOT EXISTS idx_sales_log_recorded_at ON sales_log (recorded_at);
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaDDL)
	return err
}
