package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fairtix/internal/model"
	"fairtix/internal/testutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	pool   *pgxpool.Pool
	events EventRepository
	seats  SeatRepository
	orders OrderRepository
	users  UserRepository
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	pool := testutil.SetupPostgres(t)
	testutil.Truncate(t, pool)

	return &fixture{
		pool:   pool,
		events: NewEventRepository(pool),
		seats:  NewSeatRepository(pool),
		orders: NewOrderRepository(pool),
		users:  NewUserRepository(pool),
	}
}

func (f *fixture) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	user, err := f.users.Create(context.Background(), &model.User{Email: email, PasswordHash: "x"})
	require.NoError(t, err)
	return user
}

func (f *fixture) createEventWithSeats(t *testing.T, name string, seats int) (*model.Event, []*model.Seat) {
	t.Helper()
	ctx := context.Background()

	event, err := f.events.Create(ctx, &model.Event{
		Name:          name,
		TotalSeats:    seats,
		SaleStartTime: time.Now().UTC().Truncate(time.Second),
		IsActive:      true,
	})
	require.NoError(t, err)

	created := make([]*model.Seat, 0, seats)
	for i := 1; i <= seats; i++ {
		seat, err := f.seats.Create(ctx, &model.Seat{
			EventID:    event.ID,
			Section:    "A",
			RowNumber:  "1",
			SeatNumber: fmt.Sprintf("%02d", i),
		})
		require.NoError(t, err)
		created = append(created, seat)
	}

	return event, created
}
