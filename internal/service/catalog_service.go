package service

import (
	"context"
	"fmt"

	"go-raffle-api/internal/model"
	"go-raffle-api/internal/repository"
	apperrors "go-raffle-api/pkg/app_errors"
)

// CatalogService 票池目錄查詢，純讀取，不需要跨票協調
type CatalogService interface {
	List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

type CatalogServiceImpl struct {
	repo      repository.TicketRepository
	unitPrice float64
}

func NewCatalogService(repo repository.TicketRepository, unitPrice float64) CatalogService {
	return &CatalogServiceImpl{
		repo:      repo,
		unitPrice: unitPrice,
	}
}

func (s *CatalogServiceImpl) List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	if !filter.IsValid() {
		return nil, &apperrors.ValidationError{Reason: fmt.Sprintf("unknown state filter %q", string(filter))}
	}

	tickets, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	return tickets, nil
}

func (s *CatalogServiceImpl) Stats(ctx context.Context) (*model.Stats, error) {
	total, err := s.repo.Count(ctx, model.FilterAll)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	sold, err := s.repo.Count(ctx, model.FilterSold)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	return &model.Stats{
		Total:     total,
		Sold:      sold,
		Available: total - sold,
		Revenue:   float64(sold) * s.unitPrice,
	}, nil
}
