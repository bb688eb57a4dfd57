package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fairtix/internal/model"
	apperrors "fairtix/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// foreignKeyViolation SQLSTATE 23503；seats.user_id 指向不存在的使用者
const foreignKeyViolation = "23503"

type SeatRepository interface {
	Create(ctx context.Context, seat *model.Seat) (*model.Seat, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Seat, error)
	// ReleaseExpired 將 reserved_at 早於 olderThan 的 Reserved 座位放回 Available
	ReleaseExpired(ctx context.Context, olderThan time.Time) ([]int64, error)

	// Transaction methods
	FindByIDsForEvent(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, ids []int64) ([]*model.Seat, error)
	ReserveWithVersion(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, seats []*model.Seat, userID uuid.UUID, at time.Time) error
	MarkSoldForUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID, ids []int64) ([]*model.Seat, error)
}

type SeatRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewSeatRepository(pool *pgxpool.Pool) SeatRepository {
	return &SeatRepositoryImpl{
		pool: pool,
	}
}

const seatColumns = `id, event_id, section, row_number, seat_number, status, user_id, reserved_at, version`

func scanSeat(row pgx.Row) (*model.Seat, error) {
	var seat model.Seat
	err := row.Scan(
		&seat.ID,
		&seat.EventID,
		&seat.Section,
		&seat.RowNumber,
		&seat.SeatNumber,
		&seat.Status,
		&seat.UserID,
		&seat.ReservedAt,
		&seat.Version,
	)
	if err != nil {
		return nil, err
	}
	if !seat.Status.IsValid() {
		return nil, fmt.Errorf("seat %d has unknown status %q", seat.ID, seat.Status)
	}
	return &seat, nil
}

func collectSeats(rows pgx.Rows) ([]*model.Seat, error) {
	defer rows.Close()

	seats := make([]*model.Seat, 0)
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (r *SeatRepositoryImpl) Create(ctx context.Context, seat *model.Seat) (*model.Seat, error) {
	if seat.Status == "" {
		seat.Status = model.SeatStatusAvailable
	}
	if !seat.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidSeats, seat.Status)
	}

	query := `
		INSERT INTO seats (event_id, section, row_number, seat_number, status, user_id, reserved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + seatColumns

	return scanSeat(r.pool.QueryRow(ctx, query,
		seat.EventID, seat.Section, seat.RowNumber, seat.SeatNumber,
		seat.Status, seat.UserID, seat.ReservedAt,
	))
}

func (r *SeatRepositoryImpl) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE event_id = $1
		ORDER BY section, row_number, seat_number
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}

	return collectSeats(rows)
}

// FindByIDsForEvent 不加鎖，版本號在 ReserveWithVersion 時比對
func (r *SeatRepositoryImpl) FindByIDsForEvent(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, ids []int64) ([]*model.Seat, error) {
	query := `
		SELECT ` + seatColumns + `
		FROM seats
		WHERE event_id = $1 AND id = ANY($2)
		ORDER BY id
	`

	rows, err := tx.Query(ctx, query, eventID, ids)
	if err != nil {
		return nil, err
	}

	return collectSeats(rows)
}

// ReserveWithVersion 以單一語句對所有座位做 compare-and-swap
// 只要有一筆的版本號已變動，受影響筆數就會少於座位數
func (r *SeatRepositoryImpl) ReserveWithVersion(
	ctx context.Context,
	tx pgx.Tx,
	eventID uuid.UUID,
	seats []*model.Seat,
	userID uuid.UUID,
	at time.Time,
) error {
	ids := make([]int64, len(seats))
	versions := make([]int64, len(seats))
	for i, seat := range seats {
		ids[i] = seat.ID
		versions[i] = seat.Version
	}

	query := `
		UPDATE seats s
		SET status = $1, user_id = $2, reserved_at = $3, version = s.version + 1
		FROM unnest($4::bigint[], $5::bigint[]) AS v(id, version)
		WHERE s.id = v.id AND s.version = v.version AND s.event_id = $6
		  AND s.status = 'Available'
	`

	result, err := tx.Exec(ctx, query, model.SeatStatusReserved, userID, at.UTC(), ids, versions, eventID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to reserve seats: %w", err)
	}

	if result.RowsAffected() != int64(len(seats)) {
		return apperrors.ErrConcurrencyConflict
	}

	for _, seat := range seats {
		seat.Status = model.SeatStatusReserved
		seat.UserID = &userID
		reservedAt := at.UTC()
		seat.ReservedAt = &reservedAt
		seat.Version++
	}

	return nil
}

// MarkSoldForUser 只轉換屬於該使用者且仍為 Reserved 的座位；呼叫端比對筆數
func (r *SeatRepositoryImpl) MarkSoldForUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID, ids []int64) ([]*model.Seat, error) {
	query := `
		UPDATE seats
		SET status = $1, version = version + 1
		WHERE id = ANY($2) AND user_id = $3 AND status = $4
		RETURNING ` + seatColumns

	rows, err := tx.Query(ctx, query, model.SeatStatusSold, ids, userID, model.SeatStatusReserved)
	if err != nil {
		return nil, fmt.Errorf("failed to mark seats sold: %w", err)
	}

	return collectSeats(rows)
}

func (r *SeatRepositoryImpl) ReleaseExpired(ctx context.Context, olderThan time.Time) ([]int64, error) {
	query := `
		UPDATE seats
		SET status = $1, user_id = NULL, reserved_at = NULL, version = version + 1
		WHERE status = $2 AND reserved_at < $3
		RETURNING id
	`

	rows, err := r.pool.Query(ctx, query, model.SeatStatusAvailable, model.SeatStatusReserved, olderThan.UTC())
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
