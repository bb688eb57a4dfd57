package service

import (
	"context"

	"fairtix/internal/model"
	"fairtix/internal/repository"

	"github.com/google/uuid"
)

type EventService interface {
	ListActive(ctx context.Context) ([]*model.EventSummary, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	// ListSeats 座位圖；活動不存在時回傳 ErrEventNotFound
	ListSeats(ctx context.Context, eventID uuid.UUID) ([]model.SeatResponse, error)
}

type EventServiceImpl struct {
	repo     repository.EventRepository
	seatRepo repository.SeatRepository
}

func NewEventService(repo repository.EventRepository, seatRepo repository.SeatRepository) EventService {
	return &EventServiceImpl{repo: repo, seatRepo: seatRepo}
}

func (s *EventServiceImpl) ListActive(ctx context.Context) ([]*model.EventSummary, error) {
	return s.repo.ListActive(ctx)
}

func (s *EventServiceImpl) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListActiveIDs(ctx)
}

func (s *EventServiceImpl) ListSeats(ctx context.Context, eventID uuid.UUID) ([]model.SeatResponse, error) {
	if _, err := s.repo.FindByID(ctx, eventID); err != nil {
		return nil, err
	}

	seats, err := s.seatRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	resp := make([]model.SeatResponse, 0, len(seats))
	for _, seat := range seats {
		resp = append(resp, seat.ToResponse())
	}
	return resp, nil
}
