package service

import (
	"context"
	"fmt"
	"time"

	"fairtix/internal/queue"
	apperrors "fairtix/pkg/app_errors"
	"fairtix/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdmissionService interface {
	// JoinWaitingRoom 加到等候室尾端，回傳加入後的排隊人數；不檢查重複加入
	JoinWaitingRoom(ctx context.Context, userID, eventID uuid.UUID) (int64, error)
	// GetQueuePosition 回傳第一次出現的 0-based 位置
	GetQueuePosition(ctx context.Context, userID, eventID uuid.UUID) (int64, bool, error)
	IsActive(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	RemoveActiveSession(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	// AdmitBatch 從隊首取出至多 rate 人並發放 lease，回傳實際放行人數
	AdmitBatch(ctx context.Context, eventID uuid.UUID, rate int) (int, error)
	QueueLength(ctx context.Context, eventID uuid.UUID) (int64, error)
}

type AdmissionServiceImpl struct {
	store    queue.WaitingRoomStore
	leaseTTL time.Duration
}

func NewAdmissionService(store queue.WaitingRoomStore, leaseTTL time.Duration) AdmissionService {
	return &AdmissionServiceImpl{store: store, leaseTTL: leaseTTL}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrStoreUnavailable, err)
}

func (s *AdmissionServiceImpl) JoinWaitingRoom(ctx context.Context, userID, eventID uuid.UUID) (int64, error) {
	n, err := s.store.Push(ctx, queue.WaitingListKey(eventID), userID.String())
	if err != nil {
		return 0, storeErr("join waiting room", err)
	}

	logger.WithComponent("admission").Info("user joined waiting room",
		zap.String("user_id", userID.String()),
		zap.String("event_id", eventID.String()),
		zap.Int64("queue_length", n),
	)
	return n, nil
}

func (s *AdmissionServiceImpl) GetQueuePosition(ctx context.Context, userID, eventID uuid.UUID) (int64, bool, error) {
	pos, found, err := s.store.PositionOf(ctx, queue.WaitingListKey(eventID), userID.String())
	if err != nil {
		return 0, false, storeErr("get queue position", err)
	}
	return pos, found, nil
}

func (s *AdmissionServiceImpl) IsActive(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	ok, err := s.store.Exists(ctx, queue.LeaseKey(eventID, userID))
	if err != nil {
		return false, storeErr("check active lease", err)
	}
	return ok, nil
}

func (s *AdmissionServiceImpl) RemoveActiveSession(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	existed, err := s.store.Delete(ctx, queue.LeaseKey(eventID, userID))
	if err != nil {
		return false, storeErr("remove active lease", err)
	}
	return existed, nil
}

func (s *AdmissionServiceImpl) QueueLength(ctx context.Context, eventID uuid.UUID) (int64, error) {
	n, err := s.store.Len(ctx, queue.WaitingListKey(eventID))
	if err != nil {
		return 0, storeErr("queue length", err)
	}
	return n, nil
}

func (s *AdmissionServiceImpl) AdmitBatch(ctx context.Context, eventID uuid.UUID, rate int) (int, error) {
	if rate <= 0 {
		return 0, nil
	}

	listKey := queue.WaitingListKey(eventID)
	prefix := queue.LeaseKeyPrefix(eventID)

	// 支援原子操作的 store 一次完成取出與發放 lease
	if admitter, ok := s.store.(queue.LeaseAdmitter); ok {
		admitted, err := admitter.PopAndLease(ctx, listKey, rate, prefix, queue.LeaseValue, s.leaseTTL)
		if err != nil {
			return 0, storeErr("admit batch", err)
		}
		s.logAdmitted(eventID, len(admitted))
		return len(admitted), nil
	}

	popped, err := s.store.PopN(ctx, listKey, rate)
	if err != nil {
		return 0, storeErr("admit batch", err)
	}

	admitted := 0
	for _, member := range popped {
		if err := s.store.SetWithTTL(ctx, prefix+member, queue.LeaseValue, s.leaseTTL); err != nil {
			// 已取出但未發放 lease 的使用者需要重新排隊
			logger.WithComponent("admission").Error("failed to grant lease",
				zap.String("event_id", eventID.String()),
				zap.String("user_id", member),
				zap.Int("lost", len(popped)-admitted),
				zap.Error(err),
			)
			s.logAdmitted(eventID, admitted)
			return admitted, storeErr("grant lease", err)
		}
		admitted++
	}

	s.logAdmitted(eventID, admitted)
	return admitted, nil
}

func (s *AdmissionServiceImpl) logAdmitted(eventID uuid.UUID, n int) {
	if n == 0 {
		return
	}
	logger.WithComponent("admission").Info("admitted users from queue",
		zap.String("event_id", eventID.String()),
		zap.Int("count", n),
	)
}
