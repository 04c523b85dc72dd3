package repository_test

import (
	"context"
	"testing"
	"time"

	"go-raffle-api/internal/model"
	"go-raffle-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySaleLogRepository_AppendAndList(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySaleLogRepository()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := &model.SaleRecord{
		SaleID:     "sale-1",
		Numbers:    []int{1, 2},
		Buyer:      "alice",
		Total:      40,
		SoldAt:     now,
		RecordedAt: now,
	}
	second := &model.SaleRecord{
		SaleID:     "sale-2",
		Numbers:    []int{5},
		Buyer:      "bob",
		Total:      20,
		SoldAt:     now.Add(time.Minute),
		RecordedAt: now.Add(time.Minute),
	}

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// 依寫入順序
	assert.Equal(t, "sale-1", records[0].SaleID)
	assert.Equal(t, "sale-2", records[1].SaleID)
	assert.Equal(t, []int{1, 2}, records[0].Numbers)
	assert.Equal(t, "bob", records[1].Buyer)
}

func TestMemorySaleLogRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySaleLogRepository()

	record := &model.SaleRecord{SaleID: "sale-1", Numbers: []int{3, 4}, Buyer: "alice"}
	require.NoError(t, repo.Append(ctx, record))

	// 寫入後改動原始資料不應影響已存的紀錄
	record.Numbers[0] = 99

	records, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, records[0].Numbers)

	// 讀出的紀錄改動也不應寫回
	records[0].Buyer = "mallory"

	again, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", again[0].Buyer)
}
