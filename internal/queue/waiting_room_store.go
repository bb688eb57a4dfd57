package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WaitingRoomStore 等候室所需的最小儲存操作：FIFO 列表與帶 TTL 的鍵值
type WaitingRoomStore interface {
	// Push 加到列表尾端，回傳新長度
	Push(ctx context.Context, listKey, value string) (int64, error)
	// PopN 從列表頭取出至多 n 筆；n <= 0 或列表為空時回傳空切片
	PopN(ctx context.Context, listKey string, n int) ([]string, error)
	// PositionOf 回傳 0-based 位置；不在列表中時 found 為 false
	PositionOf(ctx context.Context, listKey, value string) (position int64, found bool, err error)
	Len(ctx context.Context, listKey string) (int64, error)

	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	// Delete 回傳鍵是否原本存在
	Delete(ctx context.Context, key string) (bool, error)
}

// LeaseAdmitter 可選介面：在同一個原子操作內取出使用者並發放 lease
type LeaseAdmitter interface {
	PopAndLease(ctx context.Context, listKey string, n int, leaseKeyPrefix, value string, ttl time.Duration) ([]string, error)
}

const (
	waitingListPrefix = "event:queue:waiting:"
	leasePrefix       = "session:"

	// LeaseValue 標記 lease 仍有效
	LeaseValue = "active"
)

func WaitingListKey(eventID uuid.UUID) string {
	return waitingListPrefix + eventID.String()
}

func LeaseKeyPrefix(eventID uuid.UUID) string {
	return fmt.Sprintf("%s%s:", leasePrefix, eventID)
}

func LeaseKey(eventID, userID uuid.UUID) string {
	return LeaseKeyPrefix(eventID) + userID.String()
}
