package services

import (
	"context"

	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories"
)

// UserService covers account creation and administration
type UserService interface {
	// CreateUser never returns a Go error; failures come back as CreateUserFailure
	CreateUser(ctx context.Context, req *models.CreateUserRequest, actorID string) CreateUserResult

	GetUser(ctx context.Context, id string) (*models.UserView, error)
	ListUsers(ctx context.Context, filters repositories.UserFilters) (*models.UserListResponse, error)
	SearchUsers(ctx context.Context, query string, filters repositories.UserFilters) (*models.UserListResponse, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole, actorID string) (*models.UserView, error)

	ArchiveUser(ctx context.Context, id string, actorID string) (*models.ArchivedUser, error)
	GetArchivedUser(ctx context.Context, id string) (*models.ArchivedUser, error)
	ListArchivedUsers(ctx context.Context, filters repositories.UserFilters) (*models.ArchivedUserListResponse, error)

	// ExportUsers renders every matching user into an .xlsx workbook
	ExportUsers(ctx context.Context, filters repositories.UserFilters) ([]byte, error)
}

// ServiceManager owns service construction and lifecycle
type ServiceManager interface {
	User() UserService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
