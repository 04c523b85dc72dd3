package worker

import (
	"context"
	"go-raffle-api/internal/clock"
	"go-raffle-api/internal/model"
	"go-raffle-api/internal/queue"
	"go-raffle-api/internal/repository"
	"go-raffle-api/pkg/logger"
	"go-raffle-api/pkg/metrics"

	"go.uber.org/zap"
)

type SaleWorker interface {
	// 訂閱售出事件隊列並開始落地流水
	Start(ctx context.Context) error
}

type SaleWorkerImpl struct {
	saleLogRepo repository.SaleLogRepository
	queue       queue.SaleQueue
	clock       clock.Clock
}

func NewSaleWorker(saleLogRepo repository.SaleLogRepository, queue queue.SaleQueue, clk clock.Clock) SaleWorker {
	return &SaleWorkerImpl{
		saleLogRepo: saleLogRepo,
		queue:       queue,
		clock:       clk,
	}
}

func (w *SaleWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeSales(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			record := &model.SaleRecord{
				SaleID:     msg.Data.SaleID,
				Numbers:    msg.Data.Numbers,
				Buyer:      msg.Data.Buyer,
				Total:      msg.Data.Total,
				SoldAt:     msg.Data.SoldAt,
				RecordedAt: w.clock.Now(),
			}

			if err := w.saleLogRepo.Append(ctx, record); err != nil {
				// 落地失敗就重回隊列，稍後重試
				logger.WithComponent("worker").Error("append sale record failed",
					zap.String("sale_id", record.SaleID), zap.Error(err))
				msg.Nack(true)
				continue
			}

			metrics.SaleEventsRecorded.Inc()
			msg.Ack()
		}
	}()

	return nil
}
