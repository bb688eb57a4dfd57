package model

import (
	"time"

	"github.com/google/uuid"
)

// SeatStatus 座位狀態類型
type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "Available"
	SeatStatusReserved  SeatStatus = "Reserved"
	SeatStatusSold      SeatStatus = "Sold"
)

// IsValid 驗證狀態是否有效
func (s SeatStatus) IsValid() bool {
	switch s {
	case SeatStatusAvailable, SeatStatusReserved, SeatStatusSold:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
// Reserved -> Available 只由逾時清理觸發
func (s SeatStatus) CanTransitionTo(target SeatStatus) bool {
	transitions := map[SeatStatus][]SeatStatus{
		SeatStatusAvailable: {SeatStatusReserved},
		SeatStatusReserved:  {SeatStatusSold, SeatStatusAvailable},
		SeatStatusSold:      {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Seat 座位模型；Version 在每次寫入時遞增，作為樂觀鎖的比對依據
type Seat struct {
	ID         int64      `json:"id" db:"id"`
	EventID    uuid.UUID  `json:"eventId" db:"event_id"`
	Section    string     `json:"section" db:"section"`
	RowNumber  string     `json:"rowNumber" db:"row_number"`
	SeatNumber string     `json:"seatNumber" db:"seat_number"`
	Status     SeatStatus `json:"status" db:"status"`
	UserID     *uuid.UUID `json:"userId,omitempty" db:"user_id"`
	ReservedAt *time.Time `json:"reservedAt,omitempty" db:"reserved_at"`
	Version    int64      `json:"version" db:"version"`
}

// ToResponse 座位圖不對外揭露持有者
func (s *Seat) ToResponse() SeatResponse {
	return SeatResponse{
		ID:         s.ID,
		Section:    s.Section,
		RowNumber:  s.RowNumber,
		SeatNumber: s.SeatNumber,
		Status:     string(s.Status),
	}
}

// SeatResponse 座位圖響應
type SeatResponse struct {
	ID         int64  `json:"id"`
	Section    string `json:"section"`
	RowNumber  string `json:"rowNumber"`
	SeatNumber string `json:"seatNumber"`
	Status     string `json:"status"`
}

// ReserveSeatsRequest 預約座位請求
type ReserveSeatsRequest struct {
	UserID  uuid.UUID `json:"userId" binding:"required"`
	EventID uuid.UUID `json:"eventId" binding:"required"`
	SeatIDs []int64   `json:"seatIds" binding:"required,min=1"`
}
