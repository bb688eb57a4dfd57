package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"fairtix/internal/handler"
	"fairtix/internal/model"
	"fairtix/internal/service/mocks"
	apperrors "fairtix/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupQueueTestRouter(mockService *mocks.AdmissionServiceMock) *gin.Engine {
	return handler.NewRouter(handler.NewQueueHandler(mockService))
}

func TestJoinQueue(t *testing.T) {
	eventID, userID := uuid.New(), uuid.New()
	url := "/api/events/" + eventID.String() + "/queue/join"

	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewAdmissionServiceMock()
		router := setupQueueTestRouter(mockService)

		mockService.On("JoinWaitingRoom", mock.Anything, userID, eventID).Return(int64(3), nil).Once()

		w := serve(router, createJSONHTTPRequest(http.MethodPost, url, model.JoinQueueRequest{UserID: userID, EventID: eventID}))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(w)
		assert.Equal(t, "Joined waiting room", body["message"])
		assert.Equal(t, float64(3), body["queueLength"])
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - EventMismatch", func(t *testing.T) {
		mockService := mocks.NewAdmissionServiceMock()
		router := setupQueueTestRouter(mockService)

		w := serve(router, createJSONHTTPRequest(http.MethodPost, url, model.JoinQueueRequest{UserID: userID, EventID: uuid.New()}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "JoinWaitingRoom", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - InvalidJSON", func(t *testing.T) {
		mockService := mocks.NewAdmissionServiceMock()
		router := setupQueueTestRouter(mockService)

		w := serve(router, createJSONHTTPRequest(http.MethodPost, url, InvalidJSON))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request format", decodeBody(w)["error"])
	})

	t.Run("Failed - StoreUnavailable", func(t *testing.T) {
		mockService := mocks.NewAdmissionServiceMock()
		router := setupQueueTestRouter(mockService)

		err := fmt.Errorf("join waiting room: %w: %w", apperrors.ErrStoreUnavailable, fmt.Errorf("dial tcp: refused"))
		mockService.On("JoinWaitingRoom", mock.Anything, userID, eventID).Return(int64(0), err).Once()

		w := serve(router, createJSONHTTPRequest(http.MethodPost, url, model.JoinQueueRequest{UserID: userID, EventID: eventID}))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "dial tcp")
		mockService.AssertExpectations(t)
	})
}

func TestQueuePosition(t *testing.T) {
	eventID, userID := uuid.New(), uuid.New()
	url := fmt.Sprintf("/api/events/%s/queue/position/%s", eventID, userID)

	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewAdmissionServiceMock()
		router := setupQueueTestRouter(mockService)

		mockService.On("GetQueuePosition", mock.Anything, userID, eventID).Return(int64(7), true, nil).Once()

		w := serve(router, createJSONHTTPRequest(http.MethodGet, url, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(7), decodeBody(w)["position"])
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - NotInQueue", func(t *testing.T) {
		mockService := mocks.NewAdmissionServiceMock()
		router := setupQueueTestRouter(mockService)

		mockService.On("GetQueuePosition", mock.Anything, userID, eventID).Return(int64(0), false, nil).Once()

		w := serve(router, createJSONHTTPRequest(http.MethodGet, url, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not in queue", decodeBody(w)["error"])
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - InvalidUserID", func(t *testing.T) {
		mockService := mocks.NewAdmissionServiceMock()
		router := setupQueueTestRouter(mockService)

		w := serve(router, createJSONHTTPRequest(http.MethodGet, "/api/events/"+eventID.String()+"/queue/position/42", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestActiveSession(t *testing.T) {
	eventID, userID := uuid.New(), uuid.New()
	url := fmt.Sprintf("/api/events/%s/queue/active/%s", eventID, userID)

	t.Run("Active", func(t *testing.T) {
		mockService := mocks.NewAdmissionServiceMock()
		router := setupQueueTestRouter(mockService)

		mockService.On("IsActive", mock.Anything, userID, eventID).Return(true, nil).Once()

		w := serve(router, createJSONHTTPRequest(http.MethodGet, url, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(w)
		assert.Equal(t, true, body["isActive"])
		assert.Equal(t, userID.String(), body["userId"])
		mockService.AssertExpectations(t)
	})

	t.Run("Remove", func(t *testing.T) {
		mockService := mocks.NewAdmissionServiceMock()
		router := setupQueueTestRouter(mockService)

		mockService.On("RemoveActiveSession", mock.Anything, userID, eventID).Return(true, nil).Once()

		w := serve(router, createJSONHTTPRequest(http.MethodDelete, url, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeBody(w)["removed"])
		mockService.AssertExpectations(t)
	})
}

func TestQueueStats(t *testing.T) {
	mockService := mocks.NewAdmissionServiceMock()
	router := setupQueueTestRouter(mockService)
	eventID := uuid.New()

	mockService.On("QueueLength", mock.Anything, eventID).Return(int64(12), nil).Once()

	w := serve(router, createJSONHTTPRequest(http.MethodGet, "/api/events/"+eventID.String()+"/queue/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(12), decodeBody(w)["waiting"])
	mockService.AssertExpectations(t)
}
