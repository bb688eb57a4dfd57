package apperrors

import "errors"

// 座位預約結果
var (
	ErrInvalidSeats        = errors.New("invalid seats")
	ErrAlreadyTaken        = errors.New("seats already taken")
	ErrConcurrencyConflict = errors.New("seats were modified concurrently")
	ErrPurchaseFailed      = errors.New("purchase failed")
)

// 等候室
var (
	ErrNotActive     = errors.New("user has no active session")
	ErrNotInQueue    = errors.New("user not in queue")
	ErrQueueMismatch = errors.New("event id does not match request path")
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternal         = errors.New("internal error")
)
