package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories"
)

// TokenParser validates bearer tokens issued by the identity service.
// *casdoorsdk.Client satisfies it.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

var errAccountArchived = errors.New("account has been archived")

// CasdoorAuthMiddleware provides authentication using Casdoor SDK
type CasdoorAuthMiddleware struct {
	parser      TokenParser
	userRepo    repositories.UserRepository
	archiveRepo repositories.ArchiveRepository
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(parser TokenParser, userRepo repositories.UserRepository, archiveRepo repositories.ArchiveRepository) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		parser:      parser,
		userRepo:    userRepo,
		archiveRepo: archiveRepo,
	}
}

// AuthMiddleware returns a Gin middleware function for Casdoor authentication
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authorization header missing")
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := cam.parser.ParseJwtToken(tokenParts[1])
		if err != nil {
			abortUnauthorized(c, fmt.Sprintf("invalid token: %v", err))
			return
		}

		user, err := cam.resolveUser(c.Request.Context(), claims)
		if errors.Is(err, errAccountArchived) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": err.Error(),
			})
			return
		}
		if err != nil {
			abortUnauthorized(c, fmt.Sprintf("failed to extract user info: %v", err))
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Set("user_email", user.Email)

		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": err.Error(),
			})
			return
		}

		for _, required := range requiredRoles {
			if role == required {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "insufficient permissions",
		})
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}

// resolveUser takes the role from the users row. Accounts without one are rejected when
// archived; otherwise only identity-service administrators keep a role.
func (cam *CasdoorAuthMiddleware) resolveUser(ctx context.Context, claims *casdoorsdk.Claims) (*models.AuthUser, error) {
	if claims.User.Id == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	user := &models.AuthUser{
		ID:             claims.User.Id,
		Email:          claims.User.Email,
		EmailConfirmed: claims.User.EmailVerified,
		FullName:       claims.User.DisplayName,
	}
	if claims.User.IsAdmin {
		user.Role = models.RoleAdmin
	}

	if cam.userRepo == nil {
		return user, nil
	}

	profile, err := cam.userRepo.GetByID(ctx, user.ID)
	switch {
	case err == nil:
		user.Role = profile.Role
		user.FullName = profile.DisplayName()
		return user, nil
	case errors.Is(err, repositories.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if cam.archiveRepo == nil {
		return user, nil
	}
	_, err = cam.archiveRepo.GetByID(ctx, user.ID)
	switch {
	case err == nil:
		return nil, errAccountArchived
	case errors.Is(err, repositories.ErrNotFound):
		return user, nil
	default:
		return nil, fmt.Errorf("failed to check archive: %w", err)
	}
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
