package mocks

import (
	"context"
	"time"

	"fairtix/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type SeatRepositoryMock struct {
	mock.Mock
}

func NewSeatRepositoryMock() *SeatRepositoryMock {
	return &SeatRepositoryMock{}
}

func (m *SeatRepositoryMock) Create(ctx context.Context, seat *model.Seat) (*model.Seat, error) {
	args := m.Called(ctx, seat)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Seat), args.Error(1)
}

func (m *SeatRepositoryMock) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Seat, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Seat), args.Error(1)
}

func (m *SeatRepositoryMock) ReleaseExpired(ctx context.Context, olderThan time.Time) ([]int64, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *SeatRepositoryMock) FindByIDsForEvent(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, ids []int64) ([]*model.Seat, error) {
	args := m.Called(ctx, tx, eventID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Seat), args.Error(1)
}

func (m *SeatRepositoryMock) ReserveWithVersion(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, seats []*model.Seat, userID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, tx, eventID, seats, userID, at)
	return args.Error(0)
}

func (m *SeatRepositoryMock) MarkSoldForUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID, ids []int64) ([]*model.Seat, error) {
	args := m.Called(ctx, tx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Seat), args.Error(1)
}
