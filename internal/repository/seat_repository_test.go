package repository

import (
	"context"
	"testing"
	"time"

	"fairtix/internal/model"
	apperrors "fairtix/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatRepository_ReserveWithVersion(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	event, seats := f.createEventWithSeats(t, "Opera", 2)
	alice := f.createUser(t, "alice@example.com")
	bob := f.createUser(t, "bob@example.com")

	// 兩個交易讀到同一版本，只有先提交者成功
	txA, err := f.pool.Begin(ctx)
	require.NoError(t, err)
	defer txA.Rollback(ctx)
	txB, err := f.pool.Begin(ctx)
	require.NoError(t, err)
	defer txB.Rollback(ctx)

	ids := []int64{seats[0].ID, seats[1].ID}
	seenA, err := f.seats.FindByIDsForEvent(ctx, txA, event.ID, ids)
	require.NoError(t, err)
	seenB, err := f.seats.FindByIDsForEvent(ctx, txB, event.ID, ids)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, f.seats.ReserveWithVersion(ctx, txA, event.ID, seenA, alice.ID, now))
	require.NoError(t, txA.Commit(ctx))

	err = f.seats.ReserveWithVersion(ctx, txB, event.ID, seenB, bob.ID, now)
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)

	stored, err := f.seats.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	for _, seat := range stored {
		assert.Equal(t, model.SeatStatusReserved, seat.Status)
		require.NotNil(t, seat.UserID)
		assert.Equal(t, alice.ID, *seat.UserID)
		assert.Equal(t, int64(1), seat.Version)
	}
}

func TestSeatRepository_MarkSoldForUser(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	event, seats := f.createEventWithSeats(t, "Ballet", 2)
	alice := f.createUser(t, "alice@example.com")
	bob := f.createUser(t, "bob@example.com")

	tx, err := f.pool.Begin(ctx)
	require.NoError(t, err)
	seen, err := f.seats.FindByIDsForEvent(ctx, tx, event.ID, []int64{seats[0].ID})
	require.NoError(t, err)
	require.NoError(t, f.seats.ReserveWithVersion(ctx, tx, event.ID, seen, alice.ID, time.Now()))
	require.NoError(t, tx.Commit(ctx))

	t.Run("OtherUserGetsNothing", func(t *testing.T) {
		tx, err := f.pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		sold, err := f.seats.MarkSoldForUser(ctx, tx, bob.ID, []int64{seats[0].ID})

		require.NoError(t, err)
		assert.Empty(t, sold)
	})

	t.Run("OnlyReservedSeatsConvert", func(t *testing.T) {
		tx, err := f.pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		sold, err := f.seats.MarkSoldForUser(ctx, tx, alice.ID, []int64{seats[0].ID, seats[1].ID})

		require.NoError(t, err)
		require.Len(t, sold, 1)
		assert.Equal(t, model.SeatStatusSold, sold[0].Status)
		assert.Equal(t, int64(2), sold[0].Version)
	})
}

func TestSeatRepository_ReleaseExpired(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	event, seats := f.createEventWithSeats(t, "Matinee", 2)
	alice := f.createUser(t, "alice@example.com")

	old := time.Now().Add(-time.Hour)
	tx, err := f.pool.Begin(ctx)
	require.NoError(t, err)
	stale, err := f.seats.FindByIDsForEvent(ctx, tx, event.ID, []int64{seats[0].ID})
	require.NoError(t, err)
	require.NoError(t, f.seats.ReserveWithVersion(ctx, tx, event.ID, stale, alice.ID, old))
	fresh, err := f.seats.FindByIDsForEvent(ctx, tx, event.ID, []int64{seats[1].ID})
	require.NoError(t, err)
	require.NoError(t, f.seats.ReserveWithVersion(ctx, tx, event.ID, fresh, alice.ID, time.Now()))
	require.NoError(t, tx.Commit(ctx))

	released, err := f.seats.ReleaseExpired(ctx, time.Now().Add(-time.Minute))

	require.NoError(t, err)
	assert.Equal(t, []int64{seats[0].ID}, released)

	stored, err := f.seats.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SeatStatusAvailable, stored[0].Status)
	assert.Nil(t, stored[0].UserID)
	assert.Equal(t, model.SeatStatusReserved, stored[1].Status)
}

func TestSeatRepository_ReserveUnknownUser(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	event, seats := f.createEventWithSeats(t, "Recital", 1)

	tx, err := f.pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	seen, err := f.seats.FindByIDsForEvent(ctx, tx, event.ID, []int64{seats[0].ID})
	require.NoError(t, err)

	err = f.seats.ReserveWithVersion(ctx, tx, event.ID, seen, uuid.New(), time.Now())

	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.Equal(t, model.SeatStatusAvailable, seen[0].Status)
}

func TestSeatRepository_CreateRejectsUnknownStatus(t *testing.T) {
	f := setupFixture(t)
	event, _ := f.createEventWithSeats(t, "Gala", 0)

	_, err := f.seats.Create(context.Background(), &model.Seat{
		EventID:    event.ID,
		Section:    "A",
		RowNumber:  "1",
		SeatNumber: "1",
		Status:     model.SeatStatus("Held"),
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidSeats)
}
