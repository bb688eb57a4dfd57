package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSeatStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to SeatStatus
		want     bool
	}{
		{SeatStatusAvailable, SeatStatusReserved, true},
		{SeatStatusAvailable, SeatStatusSold, false},
		{SeatStatusReserved, SeatStatusSold, true},
		{SeatStatusReserved, SeatStatusAvailable, true},
		{SeatStatusSold, SeatStatusAvailable, false},
		{SeatStatusSold, SeatStatusReserved, false},
		{SeatStatus("Broken"), SeatStatusReserved, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestSeatStatus_IsValid(t *testing.T) {
	assert.True(t, SeatStatusSold.IsValid())
	assert.False(t, SeatStatus("available").IsValid())
}

func TestSeat_ToResponseHidesHolder(t *testing.T) {
	owner := uuid.New()
	seat := &Seat{ID: 1, Status: SeatStatusReserved, UserID: &owner}

	resp := seat.ToResponse()
	assert.Equal(t, "Reserved", resp.Status)
	assert.Equal(t, int64(1), resp.ID)
}
