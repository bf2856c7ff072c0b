package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/utils"
)

type ErrorResponse = models.ErrorResponse

// BaseHandler carries the logging helpers shared by every handler
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming operation with the request-scoped logger
func (h BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.FullPath())
	if userID, ok := c.Get("user_id"); ok {
		args = append(args, "actor_id", userID)
	}
	utils.GetLogger(c, h.logger).Info(msg, args...)
}

func (h BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err, "path", c.FullPath())
	utils.GetLogger(c, h.logger).Error(msg, args...)
}

func (h BaseHandler) RespondWithError(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{
		Message: message,
		Details: details,
	})
}
