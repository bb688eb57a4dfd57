package worker

import (
	"context"
	"time"

	"fairtix/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ActiveEventLister interface {
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type BatchAdmitter interface {
	AdmitBatch(ctx context.Context, eventID uuid.UUID, rate int) (int, error)
}

// AdmissionRateFunc 決定每個活動每輪放行人數；之後可依 DB 延遲或錯誤率調整
type AdmissionRateFunc func(ctx context.Context, eventID uuid.UUID) int

func ConstantRate(n int) AdmissionRateFunc {
	return func(context.Context, uuid.UUID) int { return n }
}

type AdmissionWorker interface {
	// Run 阻塞直到 ctx 結束
	Run(ctx context.Context) error
	// Tick 執行一輪放行，回傳本輪放行總數
	Tick(ctx context.Context) int
}

type AdmissionWorkerImpl struct {
	events   ActiveEventLister
	admitter BatchAdmitter
	rate     AdmissionRateFunc
	interval time.Duration
}

func NewAdmissionWorker(events ActiveEventLister, admitter BatchAdmitter, rate AdmissionRateFunc, interval time.Duration) AdmissionWorker {
	return &AdmissionWorkerImpl{
		events:   events,
		admitter: admitter,
		rate:     rate,
		interval: interval,
	}
}

func (w *AdmissionWorkerImpl) Run(ctx context.Context) error {
	log := logger.WithComponent("admission")
	log.Info("admission worker started", zap.Duration("interval", w.interval))
	defer log.Info("admission worker stopped")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Tick(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Tick 單一活動失敗只記錄，不影響其他活動
func (w *AdmissionWorkerImpl) Tick(ctx context.Context) int {
	log := logger.WithComponent("admission")

	eventIDs, err := w.events.ListActiveIDs(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("failed to list active events", zap.Error(err))
		}
		return 0
	}

	total := 0
	for _, eventID := range eventIDs {
		if ctx.Err() != nil {
			break
		}

		admitted, err := w.admitter.AdmitBatch(ctx, eventID, w.rate(ctx, eventID))
		total += admitted
		if err != nil {
			log.Error("failed to admit users",
				zap.String("event_id", eventID.String()),
				zap.Error(err),
			)
		}
	}
	return total
}
