package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/user-admin-service/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string          // Search query for name or email
	Role   models.UserRole // Optional role filter
	Limit  int             // Page size
	Offset int             // Offset for pagination
}

// Normalize clamps pagination to sane bounds
func (f *UserFilters) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// UserRepository covers the users table
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	UpdateRole(ctx context.Context, id string, role models.UserRole) error
}

// ArchiveRepository covers the archive_users table
type ArchiveRepository interface {
	// Archive moves an active user into archive_users, keeping its ID
	Archive(ctx context.Context, id string) (*models.ArchivedUser, error)
	GetByID(ctx context.Context, id string) (*models.ArchivedUser, error)
	List(ctx context.Context, filters UserFilters) ([]*models.ArchivedUser, int64, error)
}

// CreateAuthUserParams mirrors the identity service's admin create-user call
type CreateAuthUserParams struct {
	Email        string
	Password     string
	EmailConfirm bool
	UserMetadata UserMetadata
}

type UserMetadata struct {
	FullName string
	Role     models.UserRole
}

// AuthAdminRepository is the privileged view of the identity service
type AuthAdminRepository interface {
	CreateUser(ctx context.Context, params CreateAuthUserParams) (*models.AuthUser, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	DeleteUser(ctx context.Context, id string) error
}
