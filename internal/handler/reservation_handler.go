package handler

import (
	"errors"
	"net/http"

	"fairtix/internal/model"
	"fairtix/internal/service"
	apperrors "fairtix/pkg/app_errors"
	"fairtix/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReservationHandler 預約前必須持有有效的等候室 lease
type ReservationHandler struct {
	service   service.ReservationService
	admission service.AdmissionService
}

func NewReservationHandler(service service.ReservationService, admission service.AdmissionService) *ReservationHandler {
	return &ReservationHandler{service: service, admission: admission}
}

func (h *ReservationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/reservations")
	{
		router.POST("reserve", h.Reserve)
		router.POST("purchase", h.Purchase)
	}
}

func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req model.ReserveSeatsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	ctx := c.Request.Context()
	active, err := h.admission.IsActive(ctx, req.UserID, req.EventID)
	if err != nil {
		h.handleReservationError(c, err, "Reserve")
		return
	}
	if !active {
		h.handleReservationError(c, apperrors.ErrNotActive, "Reserve")
		return
	}

	if err := h.service.ReserveSeats(ctx, req.UserID, req.EventID, req.SeatIDs); err != nil {
		h.handleReservationError(c, err, "Reserve")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Seats reserved successfully",
	})
}

func (h *ReservationHandler) Purchase(c *gin.Context) {
	var req model.PurchaseSeatsRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	order, err := h.service.PurchaseReservedSeats(c.Request.Context(), req.UserID, req.SeatIDs)
	if err != nil {
		h.handleReservationError(c, err, "Purchase")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase successful",
		"orderId": order.ID,
	})
}

func (h *ReservationHandler) handleReservationError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrNotActive):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "User must be in active session to reserve seats",
		})
	case errors.Is(err, apperrors.ErrInvalidSeats):
		log.Warn("Invalid seats")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid seats",
		})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("Unknown user")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown user",
		})
	case errors.Is(err, apperrors.ErrPurchaseFailed):
		log.Warn("Purchase failed")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Purchase failed",
		})
	case errors.Is(err, apperrors.ErrAlreadyTaken):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Some of these seats are already taken",
		})
	case errors.Is(err, apperrors.ErrConcurrencyConflict):
		log.Info("Lost reservation race")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Seats were just reserved by another user",
		})
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		log.Error("Store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Service temporarily unavailable",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
