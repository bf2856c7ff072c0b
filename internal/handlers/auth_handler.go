package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/services"
	"github.com/SAP-F-2025/user-admin-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.UserService
}

func NewAuthHandler(service services.UserService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateUser creates a confirmed account and its profile row
// @Summary Create user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "New user"
// @Success 201 {object} models.CreateUserResponse
// @Failure 400 {object} models.CreateUserResponse
// @Failure 403 {object} models.CreateUserResponse
// @Failure 409 {object} models.CreateUserResponse
// @Failure 502 {object} models.CreateUserResponse
// @Router /auth/create-user [post]
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.LogError(c, err, "Invalid create user payload")
		c.JSON(http.StatusBadRequest, models.CreateUserResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	h.LogRequest(c, "Creating user", "email", req.Email, "role", req.Role)

	actorID, _ := GetUserIDFromContext(c)

	switch result := h.service.CreateUser(c.Request.Context(), &req, actorID).(type) {
	case services.CreateUserSuccess:
		c.JSON(http.StatusCreated, models.CreateUserResponse{
			Success: true,
			Data:    result.User,
		})
	case services.CreateUserFailure:
		c.JSON(createFailureStatus(result.Err), models.CreateUserResponse{
			Success: false,
			Error:   result.Message,
		})
	default:
		c.JSON(http.StatusInternalServerError, models.CreateUserResponse{
			Success: false,
			Error:   utils.MapDatabaseError(nil),
		})
	}
}

func createFailureStatus(err error) int {
	var validationErrors services.ValidationErrors
	var identityErr *services.IdentityServiceError

	switch {
	case errors.As(err, &validationErrors):
		return http.StatusBadRequest
	case utils.IsUniqueViolation(err):
		return http.StatusConflict
	case errors.As(err, &identityErr):
		// A permission error from the identity service means our credential was refused
		return http.StatusBadGateway
	case utils.IsPermissionDenied(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
