package handler

import (
	"errors"
	"net/http"

	"fairtix/internal/model"
	"fairtix/internal/service"
	apperrors "fairtix/pkg/app_errors"
	"fairtix/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QueueHandler struct {
	service service.AdmissionService
}

func NewQueueHandler(service service.AdmissionService) *QueueHandler {
	return &QueueHandler{service: service}
}

func (h *QueueHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/events/:eventId/queue")
	{
		router.POST("join", h.Join)
		router.GET("position/:userId", h.Position)
		router.GET("active/:userId", h.Active)
		router.DELETE("active/:userId", h.RemoveActive)
		router.GET("stats", h.Stats)
	}
}

func (h *QueueHandler) Join(c *gin.Context) {
	eventID, ok := ParamUUID(c, "eventId")
	if !ok {
		return
	}

	var req model.JoinQueueRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if req.EventID != eventID {
		h.handleQueueError(c, apperrors.ErrQueueMismatch, "Join")
		return
	}

	n, err := h.service.JoinWaitingRoom(c.Request.Context(), req.UserID, eventID)
	if err != nil {
		h.handleQueueError(c, err, "Join")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Joined waiting room",
		"eventId":     eventID,
		"userId":      req.UserID,
		"queueLength": n,
	})
}

func (h *QueueHandler) Position(c *gin.Context) {
	eventID, userID, ok := eventAndUser(c)
	if !ok {
		return
	}

	pos, found, err := h.service.GetQueuePosition(c.Request.Context(), userID, eventID)
	if err != nil {
		h.handleQueueError(c, err, "Position")
		return
	}
	if !found {
		h.handleQueueError(c, apperrors.ErrNotInQueue, "Position")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"position": pos,
		"eventId":  eventID,
		"userId":   userID,
	})
}

func (h *QueueHandler) Active(c *gin.Context) {
	eventID, userID, ok := eventAndUser(c)
	if !ok {
		return
	}

	active, err := h.service.IsActive(c.Request.Context(), userID, eventID)
	if err != nil {
		h.handleQueueError(c, err, "Active")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isActive": active,
		"eventId":  eventID,
		"userId":   userID,
	})
}

func (h *QueueHandler) RemoveActive(c *gin.Context) {
	eventID, userID, ok := eventAndUser(c)
	if !ok {
		return
	}

	removed, err := h.service.RemoveActiveSession(c.Request.Context(), userID, eventID)
	if err != nil {
		h.handleQueueError(c, err, "RemoveActive")
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *QueueHandler) Stats(c *gin.Context) {
	eventID, ok := ParamUUID(c, "eventId")
	if !ok {
		return
	}

	n, err := h.service.QueueLength(c.Request.Context(), eventID)
	if err != nil {
		h.handleQueueError(c, err, "Stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"eventId": eventID,
		"waiting": n,
	})
}

func eventAndUser(c *gin.Context) (eventID, userID uuid.UUID, ok bool) {
	if eventID, ok = ParamUUID(c, "eventId"); !ok {
		return
	}
	userID, ok = ParamUUID(c, "userId")
	return
}

func (h *QueueHandler) handleQueueError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrQueueMismatch):
		log.Warn("Event id mismatch")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request",
		})
	case errors.Is(err, apperrors.ErrNotInQueue):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not in queue",
		})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		log.Error("Queue store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Waiting room temporarily unavailable",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
