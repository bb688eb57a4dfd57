package service

import (
	"context"
	"testing"

	"fairtix/internal/model"
	"fairtix/internal/repository/mocks"
	apperrors "fairtix/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEventService_ListSeats(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()
	owner := uuid.New()

	t.Run("HidesHolder", func(t *testing.T) {
		events := mocks.NewEventRepositoryMock()
		seats := mocks.NewSeatRepositoryMock()
		svc := NewEventService(events, seats)

		events.On("FindByID", mock.Anything, eventID).Return(&model.Event{ID: eventID}, nil)
		seats.On("ListByEvent", mock.Anything, eventID).Return([]*model.Seat{
			{ID: 1, EventID: eventID, Section: "A", RowNumber: "1", SeatNumber: "01", Status: model.SeatStatusReserved, UserID: &owner},
			{ID: 2, EventID: eventID, Section: "A", RowNumber: "1", SeatNumber: "02", Status: model.SeatStatusAvailable},
		}, nil)

		resp, err := svc.ListSeats(ctx, eventID)

		require.NoError(t, err)
		require.Len(t, resp, 2)
		assert.Equal(t, "Reserved", resp[0].Status)
		assert.Equal(t, "02", resp[1].SeatNumber)
	})

	t.Run("UnknownEvent", func(t *testing.T) {
		events := mocks.NewEventRepositoryMock()
		seats := mocks.NewSeatRepositoryMock()
		svc := NewEventService(events, seats)

		events.On("FindByID", mock.Anything, eventID).Return(nil, apperrors.ErrEventNotFound)

		_, err := svc.ListSeats(ctx, eventID)

		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
		seats.AssertNotCalled(t, "ListByEvent", mock.Anything, mock.Anything)
	})
}

func TestUserService_Login(t *testing.T) {
	users := mocks.NewUserRepositoryMock()
	svc := NewUserService(users)

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID != uuid.Nil && len(u.Email) == len("user_")+32+len("@example.com")
	})).Return(&model.User{ID: uuid.New(), Email: "user_x@example.com"}, nil)

	user, err := svc.Login(context.Background())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	users.AssertExpectations(t)
}
