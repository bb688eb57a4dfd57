package model

import (
	"time"

	"github.com/google/uuid"
)

// Event 活動；下架時只將 IsActive 設為 false，不刪除
type Event struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	TotalSeats    int       `json:"totalSeats" db:"total_seats"`
	SaleStartTime time.Time `json:"saleStartTime" db:"sale_start_time"`
	IsActive      bool      `json:"isActive" db:"is_active"`
}

// EventSummary 活動列表項目，含剩餘可售座位數
type EventSummary struct {
	Event
	AvailableSeats int `json:"availableSeats" db:"available_seats"`
}
