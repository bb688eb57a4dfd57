package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type AdmissionServiceMock struct {
	mock.Mock
}

func NewAdmissionServiceMock() *AdmissionServiceMock {
	return &AdmissionServiceMock{}
}

func (m *AdmissionServiceMock) JoinWaitingRoom(ctx context.Context, userID, eventID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *AdmissionServiceMock) GetQueuePosition(ctx context.Context, userID, eventID uuid.UUID) (int64, bool, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *AdmissionServiceMock) IsActive(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *AdmissionServiceMock) RemoveActiveSession(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *AdmissionServiceMock) AdmitBatch(ctx context.Context, eventID uuid.UUID, rate int) (int, error) {
	args := m.Called(ctx, eventID, rate)
	return args.Int(0), args.Error(1)
}

func (m *AdmissionServiceMock) QueueLength(ctx context.Context, eventID uuid.UUID) (int64, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(int64), args.Error(1)
}
