package service

import (
	"context"

	"fairtix/internal/model"
	"fairtix/internal/repository"

	"github.com/google/uuid"
)

type OrderService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Order, error)
}

type OrderServiceImpl struct {
	repository repository.OrderRepository
	users      repository.UserRepository
}

func NewOrderService(orderRepository repository.OrderRepository, userRepository repository.UserRepository) OrderService {
	return &OrderServiceImpl{repository: orderRepository, users: userRepository}
}

func (s *OrderServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.repository.FindByID(ctx, id)
}

// ListByUser 未知使用者回 ErrUserNotFound，而不是空列表
func (s *OrderServiceImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Order, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repository.FindByUserID(ctx, userID)
}
