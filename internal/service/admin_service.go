package service

import (
	"context"

	"go-raffle-api/internal/model"
	"go-raffle-api/internal/repository"
	apperrors "go-raffle-api/pkg/app_errors"
	"go-raffle-api/pkg/logger"
	"go-raffle-api/pkg/metrics"

	"go.uber.org/zap"
)

// AdminService 管理操作：重置票池、查詢銷售流水。
// ResetAll 與進行中的購買之間沒有原子性保證，僅供管理情境使用。
type AdminService interface {
	ResetAll(ctx context.Context) (int, error)
	Sales(ctx context.Context) ([]*model.SaleRecord, error)
}

type AdminServiceImpl struct {
	repo        repository.TicketRepository
	saleLogRepo repository.SaleLogRepository
}

func NewAdminService(repo repository.TicketRepository, saleLogRepo repository.SaleLogRepository) AdminService {
	return &AdminServiceImpl{
		repo:        repo,
		saleLogRepo: saleLogRepo,
	}
}

func (s *AdminServiceImpl) ResetAll(ctx context.Context) (int, error) {
	count, err := s.repo.ResetAll(ctx)
	if err != nil {
		return 0, apperrors.StoreUnavailable(err)
	}

	metrics.PoolResets.Inc()
	logger.WithComponent("service").Info("pool reset", zap.Int("reset_count", count))

	return count, nil
}

func (s *AdminServiceImpl) Sales(ctx context.Context) ([]*model.SaleRecord, error) {
	records, err := s.saleLogRepo.List(ctx)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	return records, nil
}
