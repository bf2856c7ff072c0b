package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/user-admin-service/internal/cache"
	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories"
)

// userPage is the cached form of one List result
type userPage struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
}

type UserPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserRepository {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &UserPostgreSQL{db: db, cache: cacheManager}
}

// Create inserts a users row. Unique violations stay reachable through the wrapped error.
func (r *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	cache.SafeDelete(ctx, r.cache.Exists, "email:"+user.Email)
	cache.SafeInvalidatePattern(ctx, r.cache.User, cache.ListCacheConfig.Prefix+"*")
	return nil
}

// GetByID retrieves a user by ID
func (r *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := "id:" + id
	var cached models.User
	if err := r.cache.User.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, "user %s", id)
	}

	cache.SafeSet(ctx, r.cache.User, cacheKey, &user, cache.UserCacheConfig)
	return &user, nil
}

// ExistsByEmail checks if an active user has the email
func (r *UserPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// List retrieves a paginated list of users with optional filters
func (r *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	filters.Normalize()

	page, err := cache.CacheOrExecute(ctx, r.cache.User, listCacheKey(filters), cache.ListCacheConfig.TTL, func() (userPage, error) {
		query := func() *gorm.DB {
			return applyUserFilters(r.db.WithContext(ctx).Model(&models.User{}), filters)
		}

		var total int64
		if err := query().Count(&total).Error; err != nil {
			return userPage{}, fmt.Errorf("failed to count users: %w", err)
		}

		var users []*models.User
		err := applyPaginationAndSort(query(), "created_at", "desc", filters.Limit, filters.Offset).
			Find(&users).Error
		if err != nil {
			return userPage{}, fmt.Errorf("failed to list users: %w", err)
		}
		return userPage{Users: users, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return page.Users, page.Total, nil
}

// UpdateRole changes the role of a user
func (r *UserPostgreSQL) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"role":       role,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}

	r.cache.InvalidateUser(ctx, id, "")
	return nil
}
