package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"fairtix/internal/database"
	"fairtix/internal/model"
	"fairtix/internal/queue"
	"fairtix/internal/repository"
	apperrors "fairtix/pkg/app_errors"
	"fairtix/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReservationService interface {
	// ReserveSeats 呼叫前須已確認使用者持有 lease；這裡不再檢查
	ReserveSeats(ctx context.Context, userID, eventID uuid.UUID, seatIDs []int64) error
	PurchaseReservedSeats(ctx context.Context, userID uuid.UUID, seatIDs []int64) (*model.Order, error)
	// ReleaseExpiredReservations 將逾時未購買的座位放回 Available，回傳釋放數量
	ReleaseExpiredReservations(ctx context.Context) (int, error)
}

type ReservationOptions struct {
	PricePerSeat float64
	TxTimeout    time.Duration
	HoldTTL      time.Duration
	Clock        func() time.Time
}

func (o ReservationOptions) withDefaults() ReservationOptions {
	if o.PricePerSeat <= 0 {
		o.PricePerSeat = 50.00
	}
	if o.TxTimeout <= 0 {
		o.TxTimeout = 5 * time.Second
	}
	if o.HoldTTL <= 0 {
		o.HoldTTL = 5 * time.Minute
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

type ReservationServiceImpl struct {
	db        database.TxBeginner
	seats     repository.SeatRepository
	orders    repository.OrderRepository
	publisher queue.OrderEventPublisher
	opts      ReservationOptions
}

// NewReservationService publisher 可為 nil，此時購買完成不發事件
func NewReservationService(
	db database.TxBeginner,
	seats repository.SeatRepository,
	orders repository.OrderRepository,
	publisher queue.OrderEventPublisher,
	opts ReservationOptions,
) ReservationService {
	return &ReservationServiceImpl{
		db:        db,
		seats:     seats,
		orders:    orders,
		publisher: publisher,
		opts:      opts.withDefaults(),
	}
}

// normalizeSeatIDs 去除重複並排序，確保多座位更新的順序一致
func normalizeSeatIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// txErr 逾時或連線問題視為 store 暫時不可用，其餘歸類為 fallback
func txErr(op string, err, fallback error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", op, fallback, err)
}

func (s *ReservationServiceImpl) ReserveSeats(ctx context.Context, userID, eventID uuid.UUID, seatIDs []int64) error {
	log := logger.WithComponent("service")

	ids := normalizeSeatIDs(seatIDs)
	if len(ids) == 0 {
		return apperrors.ErrInvalidSeats
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin reservation: %w: %w", apperrors.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	seats, err := s.seats.FindByIDsForEvent(ctx, tx, eventID, ids)
	if err != nil {
		return txErr("load seats", err, apperrors.ErrInternal)
	}

	if len(seats) != len(ids) {
		return apperrors.ErrInvalidSeats
	}

	for _, seat := range seats {
		if !seat.Status.CanTransitionTo(model.SeatStatusReserved) {
			return apperrors.ErrAlreadyTaken
		}
	}

	err = s.seats.ReserveWithVersion(ctx, tx, eventID, seats, userID, s.opts.Clock())
	if errors.Is(err, apperrors.ErrConcurrencyConflict) {
		log.Warn("concurrency conflict detected",
			zap.String("user_id", userID.String()),
			zap.Int64s("seat_ids", ids),
		)
		return apperrors.ErrConcurrencyConflict
	}
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return apperrors.ErrUserNotFound
	}
	if err != nil {
		return txErr("reserve seats", err, apperrors.ErrInternal)
	}

	if err := tx.Commit(ctx); err != nil {
		return txErr("commit reservation", err, apperrors.ErrInternal)
	}

	log.Info("seats reserved",
		zap.String("user_id", userID.String()),
		zap.String("event_id", eventID.String()),
		zap.Int("count", len(ids)),
	)
	return nil
}

// PurchaseReservedSeats 以 status = Reserved AND user_id = 呼叫者 作為併發保護，不需比對版本號
func (s *ReservationServiceImpl) PurchaseReservedSeats(ctx context.Context, userID uuid.UUID, seatIDs []int64) (*model.Order, error) {
	log := logger.WithComponent("service")

	ids := normalizeSeatIDs(seatIDs)
	if len(ids) == 0 {
		return nil, apperrors.ErrInvalidSeats
	}

	txCtx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin purchase: %w: %w", apperrors.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(txCtx)

	sold, err := s.seats.MarkSoldForUser(txCtx, tx, userID, ids)
	if err != nil {
		return nil, txErr("mark seats sold", err, apperrors.ErrPurchaseFailed)
	}

	if len(sold) != len(ids) {
		return nil, apperrors.ErrInvalidSeats
	}

	order, err := s.orders.Create(txCtx, tx, &model.Order{
		UserID:        userID,
		TotalAmount:   math.Round(s.opts.PricePerSeat*float64(len(sold))*100) / 100,
		PaymentStatus: model.PaymentStatusCompleted,
	})
	if err != nil {
		return nil, txErr("create order", err, apperrors.ErrPurchaseFailed)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, txErr("commit purchase", err, apperrors.ErrPurchaseFailed)
	}

	log.Info("seats purchased",
		zap.String("user_id", userID.String()),
		zap.String("order_id", order.ID.String()),
		zap.Int("count", len(sold)),
	)

	s.publishCompleted(ctx, order, sold)
	return order, nil
}

// publishCompleted 訂單已提交，發送失敗只記錄不回報
func (s *ReservationServiceImpl) publishCompleted(ctx context.Context, order *model.Order, sold []*model.Seat) {
	if s.publisher == nil {
		return
	}

	event := &model.OrderCompletedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		SeatIDs:     make([]int64, 0, len(sold)),
		TotalAmount: order.TotalAmount,
		CompletedAt: s.opts.Clock().UTC(),
	}
	for _, seat := range sold {
		event.SeatIDs = append(event.SeatIDs, seat.ID)
		if !slices.Contains(event.EventIDs, seat.EventID) {
			event.EventIDs = append(event.EventIDs, seat.EventID)
		}
	}

	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		logger.WithComponent("service").Error("failed to publish order completed event",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *ReservationServiceImpl) ReleaseExpiredReservations(ctx context.Context) (int, error) {
	olderThan := s.opts.Clock().Add(-s.opts.HoldTTL)

	released, err := s.seats.ReleaseExpired(ctx, olderThan)
	if err != nil {
		return 0, storeErr("release expired reservations", err)
	}

	if len(released) > 0 {
		logger.WithComponent("sweeper").Info("released expired reservations",
			zap.Int("count", len(released)),
			zap.Int64s("seat_ids", released),
		)
	}
	return len(released), nil
}
