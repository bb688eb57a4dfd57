package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus 付款狀態類型
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "Completed"
)

// Order 訂單模型；成功購買時建立一次，之後不再變動
type Order struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	UserID        uuid.UUID     `json:"userId" db:"user_id"`
	TotalAmount   float64       `json:"totalAmount" db:"total_amount"`
	PaymentStatus PaymentStatus `json:"paymentStatus" db:"payment_status"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
}

// PurchaseSeatsRequest 購買已預約座位請求
type PurchaseSeatsRequest struct {
	UserID  uuid.UUID `json:"userId" binding:"required"`
	SeatIDs []int64   `json:"seatIds" binding:"required,min=1"`
}

// OrderCompletedEvent 購買成功後發佈到訂單事件隊列
type OrderCompletedEvent struct {
	OrderID     uuid.UUID   `json:"orderId"`
	UserID      uuid.UUID   `json:"userId"`
	EventIDs    []uuid.UUID `json:"eventIds"`
	SeatIDs     []int64     `json:"seatIds"`
	TotalAmount float64     `json:"totalAmount"`
	CompletedAt time.Time   `json:"completedAt"`
}
