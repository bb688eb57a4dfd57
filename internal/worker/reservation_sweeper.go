package worker

import (
	"context"
	"time"

	"fairtix/pkg/logger"

	"go.uber.org/zap"
)

type ExpiredReservationReleaser interface {
	ReleaseExpiredReservations(ctx context.Context) (int, error)
}

// ReservationSweeper 定期釋放逾時未購買的 Reserved 座位
type ReservationSweeper struct {
	releaser ExpiredReservationReleaser
	interval time.Duration
}

func NewReservationSweeper(releaser ExpiredReservationReleaser, interval time.Duration) *ReservationSweeper {
	return &ReservationSweeper{releaser: releaser, interval: interval}
}

func (s *ReservationSweeper) Run(ctx context.Context) error {
	log := logger.WithComponent("sweeper")
	log.Info("reservation sweeper started", zap.Duration("interval", s.interval))
	defer log.Info("reservation sweeper stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *ReservationSweeper) Sweep(ctx context.Context) int {
	released, err := s.releaser.ReleaseExpiredReservations(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.WithComponent("sweeper").Error("failed to release expired reservations", zap.Error(err))
		}
		return 0
	}
	return released
}
