package queue

import (
	"context"
	"go-raffle-api/internal/model"
)

type Delivery struct {
	Data *model.SaleEvent
	Ack  func()
	Nack func(requeue bool)
}

type SaleQueue interface {
	// 發送售出事件到隊列
	PublishSale(ctx context.Context, event *model.SaleEvent) error
	// 訂閱售出事件隊列
	SubscribeSales(ctx context.Context) (<-chan Delivery, error)
}

type SaleQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *model.SaleEvent
}

func NewSaleQueue(bufferSize int) SaleQueue {
	return &SaleQueueImpl{
		ch: make(chan *model.SaleEvent, bufferSize),
	}
}

func (q *SaleQueueImpl) PublishSale(ctx context.Context, event *model.SaleEvent) error {
	// 模擬 MQ 發送
	q.ch <- event
	return nil
}

func (q *SaleQueueImpl) SubscribeSales(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				// 將原始 SaleEvent 包裝成 Delivery 格式給 Worker
				out <- Delivery{
					Data: event,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- event // 簡單模擬重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
