package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/services"
	"github.com/SAP-F-2025/user-admin-service/internal/utils"
)

const serviceName = "user-admin-service"

type HandlerManager struct {
	serviceManager services.ServiceManager
	authHandler    *AuthHandler
	userHandler    *UserHandler
	authMiddleware *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	authMiddleware *CasdoorAuthMiddleware,
) *HandlerManager {
	return &HandlerManager{
		serviceManager: serviceManager,
		authHandler:    NewAuthHandler(serviceManager.User(), logger),
		userHandler:    NewUserHandler(serviceManager.User(), logger),
		authMiddleware: authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Every API route is admin-only
	api := router.Group("/api")
	api.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/create-user", hm.authHandler.CreateUser)
		}

		users := api.Group("/users")
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/search", hm.userHandler.SearchUsers)
			users.GET("/export", hm.userHandler.ExportUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id/role", hm.userHandler.UpdateRole)
			users.POST("/:id/archive", hm.userHandler.ArchiveUser)
		}

		archive := api.Group("/archive-users")
		{
			archive.GET("", hm.userHandler.ListArchivedUsers)
			archive.GET("/:id", hm.userHandler.GetArchivedUser)
		}
	}

	router.GET("/health", hm.healthCheck)
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
