package handler

import (
	"net/http"

	"fairtix/internal/service"
	"fairtix/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service service.UserService
}

func NewAuthHandler(service service.UserService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/auth/login", h.Login)
}

// Login 展示用：不檢查帳密，直接建立一個新使用者
func (h *AuthHandler) Login(c *gin.Context) {
	user, err := h.service.Login(c.Request.Context())
	if err != nil {
		logger.WithComponent("handler").Error("Login failed",
			zap.String("operation", "Login"), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": user.ID,
		"email":  user.Email,
	})
}
