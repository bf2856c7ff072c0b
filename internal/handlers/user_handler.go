package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories"
	"github.com/SAP-F-2025/user-admin-service/internal/services"
	"github.com/SAP-F-2025/user-admin-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Param role query string false "Filter by role (admin, trainer, trainee)"
// @Success 200 {object} models.UserListResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	filters, ok := h.parseUserFilters(c)
	if !ok {
		return
	}

	response, err := h.service.ListUsers(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchUsers searches users by name or email
// @Router /users/search [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		h.RespondWithError(c, http.StatusBadRequest, "Search query parameter 'q' is required", nil)
		return
	}

	h.LogRequest(c, "Searching users", "query", query)

	filters, ok := h.parseUserFilters(c)
	if !ok {
		return
	}

	response, err := h.service.SearchUsers(c.Request.Context(), query, filters)
	if err != nil {
		h.handleServiceError(c, err, "Failed to search users")
		return
	}

	c.JSON(http.StatusOK, response)
}

// ExportUsers streams the filtered user list as an .xlsx workbook
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /users/export [get]
func (h *UserHandler) ExportUsers(c *gin.Context) {
	h.LogRequest(c, "Exporting users")

	filters, ok := h.parseUserFilters(c)
	if !ok {
		return
	}

	data, err := h.service.ExportUsers(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err, "Failed to export users")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="users.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetUser retrieves a user by ID
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.Param("id")
	h.LogRequest(c, "Getting user", "user_id", userID)

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateRole changes a user's role
// @Accept json
// @Param request body models.UpdateRoleRequest true "New role"
// @Router /users/{id}/role [put]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	userID := c.Param("id")

	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	role, err := models.ParseUserRole(string(req.Role))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid role", err.Error())
		return
	}

	h.LogRequest(c, "Updating user role", "user_id", userID, "role", role)

	actorID, _ := GetUserIDFromContext(c)
	user, err := h.service.UpdateRole(c.Request.Context(), userID, role, actorID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update role")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ArchiveUser moves a user into archive_users
// @Router /users/{id}/archive [post]
func (h *UserHandler) ArchiveUser(c *gin.Context) {
	userID := c.Param("id")
	h.LogRequest(c, "Archiving user", "user_id", userID)

	actorID, _ := GetUserIDFromContext(c)
	archived, err := h.service.ArchiveUser(c.Request.Context(), userID, actorID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to archive user")
		return
	}

	c.JSON(http.StatusOK, archived)
}

// ListArchivedUsers lists archived users
// @Router /archive-users [get]
func (h *UserHandler) ListArchivedUsers(c *gin.Context) {
	h.LogRequest(c, "Listing archived users")

	filters, ok := h.parseUserFilters(c)
	if !ok {
		return
	}

	response, err := h.service.ListArchivedUsers(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list archived users")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetArchivedUser retrieves an archived user by ID
// @Router /archive-users/{id} [get]
func (h *UserHandler) GetArchivedUser(c *gin.Context) {
	userID := c.Param("id")
	h.LogRequest(c, "Getting archived user", "user_id", userID)

	archived, err := h.service.GetArchivedUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get archived user")
		return
	}

	c.JSON(http.StatusOK, archived)
}

// ===== HELPER METHODS =====

func (h *UserHandler) parseUserFilters(c *gin.Context) (repositories.UserFilters, bool) {
	page := 1
	size := 10

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if sizeStr := c.Query("size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
			size = s
		}
	}

	filters := repositories.UserFilters{
		Limit:  size,
		Offset: (page - 1) * size,
		Query:  c.Query("q"),
	}

	if roleStr := c.Query("role"); roleStr != "" {
		role, err := models.ParseUserRole(roleStr)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid role filter", err.Error())
			return filters, false
		}
		filters.Role = role
	}

	return filters, true
}

func (h *UserHandler) handleServiceError(c *gin.Context, err error, msg string) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", validationErrors)
		return
	}

	var identityErr *services.IdentityServiceError

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		h.RespondWithError(c, http.StatusNotFound, "User not found", nil)
	case errors.Is(err, services.ErrArchivedUserNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Archived user not found", nil)
	case utils.IsUniqueViolation(err):
		h.RespondWithError(c, http.StatusConflict, utils.MapDatabaseError(err), nil)
	case errors.As(err, &identityErr):
		h.LogError(c, err, msg)
		h.RespondWithError(c, http.StatusBadGateway, msg, identityErr.Error())
	case utils.IsPermissionDenied(err):
		h.RespondWithError(c, http.StatusForbidden, utils.MapDatabaseError(err), nil)
	default:
		h.LogError(c, err, msg)
		h.RespondWithError(c, http.StatusInternalServerError, msg, nil)
	}
}
