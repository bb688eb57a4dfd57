package queue

import (
	"context"
	"time"

	"fairtix/internal/model"
	"fairtix/pkg/logger"

	"go.uber.org/zap"
)

type Delivery struct {
	Data *model.OrderCompletedEvent
	Ack  func()
	Nack func(requeue bool)
}

// OrderEventPublisher 購買流程只需要發佈端
type OrderEventPublisher interface {
	Publish(ctx context.Context, event *model.OrderCompletedEvent) error
}

type OrderEventQueue interface {
	OrderEventPublisher
	// 訂閱訂單完成事件；ctx 結束時關閉 channel
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

type MemoryOrderEventQueue struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *pendingEvent

	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// pendingEvent 記錄已投遞次數，Nack 後依次數決定延遲或丟棄
type pendingEvent struct {
	event    *model.OrderCompletedEvent
	attempts int
}

type MemoryQueueOption func(*MemoryOrderEventQueue)

// WithRetry 設定最多投遞次數與重新投遞的指數退避區間
func WithRetry(maxAttempts int, baseDelay, maxDelay time.Duration) MemoryQueueOption {
	return func(q *MemoryOrderEventQueue) {
		if maxAttempts > 0 {
			q.maxAttempts = maxAttempts
		}
		if baseDelay > 0 {
			q.baseDelay = baseDelay
		}
		if maxDelay > 0 {
			q.maxDelay = maxDelay
		}
	}
}

func NewMemoryOrderEventQueue(bufferSize int, opts ...MemoryQueueOption) *MemoryOrderEventQueue {
	q := &MemoryOrderEventQueue{
		ch:          make(chan *pendingEvent, bufferSize),
		maxAttempts: 5,
		baseDelay:   200 * time.Millisecond,
		maxDelay:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *MemoryOrderEventQueue) Publish(ctx context.Context, event *model.OrderCompletedEvent) error {
	select {
	case q.ch <- &pendingEvent{event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryOrderEventQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-q.ch:
				if !ok {
					return
				}

				p.attempts++
				d := Delivery{
					Data: p.event,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							q.redeliver(p)
						}
					},
				}

				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// redeliver 超過次數上限即丟棄；lease 之後仍會因 TTL 自然過期
func (q *MemoryOrderEventQueue) redeliver(p *pendingEvent) {
	log := logger.WithComponent("order-events")

	if p.attempts >= q.maxAttempts {
		log.Warn("discard order event after max attempts",
			zap.String("order_id", p.event.OrderID.String()),
			zap.Int("attempts", p.attempts),
		)
		return
	}

	delay := q.baseDelay
	for i := 1; i < p.attempts && delay < q.maxDelay; i++ {
		delay *= 2
	}
	delay = min(delay, q.maxDelay)

	time.AfterFunc(delay, func() {
		// buffer 已滿時直接丟棄，避免計時器 goroutine 卡住
		select {
		case q.ch <- p:
		default:
			log.Warn("order event buffer full, dropping redelivery",
				zap.String("order_id", p.event.OrderID.String()),
			)
		}
	})
}
