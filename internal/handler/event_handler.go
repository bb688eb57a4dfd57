package handler

import (
	"errors"
	"net/http"

	"fairtix/internal/service"
	apperrors "fairtix/pkg/app_errors"
	"fairtix/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api")
	{
		router.GET("events", h.ListEvents)
		router.GET("events/:eventId/seats", h.ListSeats)
	}
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.handleEventError(c, err, "ListEvents")
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) ListSeats(c *gin.Context) {
	eventID, ok := ParamUUID(c, "eventId")
	if !ok {
		return
	}

	seats, err := h.service.ListSeats(c.Request.Context(), eventID)
	if err != nil {
		h.handleEventError(c, err, "ListSeats")
		return
	}

	c.JSON(http.StatusOK, seats)
}

func (h *EventHandler) handleEventError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Event not found",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
