package worker

import (
	"context"

	"fairtix/internal/model"
	"fairtix/internal/queue"
	"fairtix/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ActiveSessionRemover interface {
	RemoveActiveSession(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
}

// OrderEventWorker 消費訂單完成事件：記錄購買並收回買家的 lease
type OrderEventWorker struct {
	queue    queue.OrderEventQueue
	sessions ActiveSessionRemover
}

func NewOrderEventWorker(q queue.OrderEventQueue, sessions ActiveSessionRemover) *OrderEventWorker {
	return &OrderEventWorker{queue: q, sessions: sessions}
}

func (w *OrderEventWorker) Run(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	log := logger.WithComponent("order-events")
	log.Info("order event worker started")
	defer log.Info("order event worker stopped")

	for msg := range msgs {
		if err := w.handle(ctx, msg.Data); err != nil {
			// lease 還沒收回，稍後重試
			msg.Nack(true)
			continue
		}
		msg.Ack()
	}
	return nil
}

func (w *OrderEventWorker) handle(ctx context.Context, event *model.OrderCompletedEvent) error {
	log := logger.WithComponent("order-events")

	log.Info("order completed",
		zap.String("order_id", event.OrderID.String()),
		zap.String("user_id", event.UserID.String()),
		zap.Int64s("seat_ids", event.SeatIDs),
		zap.Float64("total_amount", event.TotalAmount),
	)

	for _, eventID := range event.EventIDs {
		if _, err := w.sessions.RemoveActiveSession(ctx, event.UserID, eventID); err != nil {
			log.Warn("failed to remove active session",
				zap.String("order_id", event.OrderID.String()),
				zap.String("event_id", eventID.String()),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}
