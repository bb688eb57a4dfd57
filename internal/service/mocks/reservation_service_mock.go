package mocks

import (
	"context"

	"fairtix/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ReservationServiceMock struct {
	mock.Mock
}

func NewReservationServiceMock() *ReservationServiceMock {
	return &ReservationServiceMock{}
}

func (m *ReservationServiceMock) ReserveSeats(ctx context.Context, userID, eventID uuid.UUID, seatIDs []int64) error {
	args := m.Called(ctx, userID, eventID, seatIDs)
	return args.Error(0)
}

func (m *ReservationServiceMock) PurchaseReservedSeats(ctx context.Context, userID uuid.UUID, seatIDs []int64) (*model.Order, error) {
	args := m.Called(ctx, userID, seatIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *ReservationServiceMock) ReleaseExpiredReservations(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
