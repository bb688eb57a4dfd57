package repository

import (
	"context"
	"errors"

	"fairtix/internal/model"
	apperrors "fairtix/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	ListActive(ctx context.Context) ([]*model.EventSummary, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	query := `
		INSERT INTO events (id, name, total_seats, sale_start_time, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, total_seats, sale_start_time, is_active
	`
	err := r.pool.QueryRow(ctx, query,
		event.ID, event.Name, event.TotalSeats, event.SaleStartTime, event.IsActive,
	).Scan(
		&event.ID,
		&event.Name,
		&event.TotalSeats,
		&event.SaleStartTime,
		&event.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	query := `
		SELECT id, name, total_seats, sale_start_time, is_active
		FROM events
		WHERE id = $1
	`

	var event model.Event
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.TotalSeats,
		&event.SaleStartTime,
		&event.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

// ListActive 依開賣時間排序，附帶目前可售座位數
func (r *EventRepositoryImpl) ListActive(ctx context.Context) ([]*model.EventSummary, error) {
	query := `
		SELECT e.id, e.name, e.total_seats, e.sale_start_time, e.is_active,
		       COUNT(s.id) FILTER (WHERE s.status = 'Available') AS available_seats
		FROM events e
		LEFT JOIN seats s ON s.event_id = e.id
		WHERE e.is_active
		GROUP BY e.id
		ORDER BY e.sale_start_time, e.name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.EventSummary, 0)
	for rows.Next() {
		var event model.EventSummary
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.TotalSeats,
			&event.SaleStartTime,
			&event.IsActive,
			&event.AvailableSeats,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *EventRepositoryImpl) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM events WHERE is_active ORDER BY sale_start_time`)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func (r *EventRepositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.pool.Exec(ctx, `UPDATE events SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}
