package model

import "github.com/google/uuid"

// JoinQueueRequest 加入等候室請求；EventID 必須與路徑一致
type JoinQueueRequest struct {
	UserID  uuid.UUID `json:"userId" binding:"required"`
	EventID uuid.UUID `json:"eventId" binding:"required"`
}
