package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/user-admin-service/internal/cache"
	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories"
)

type archivePage struct {
	Users []*models.ArchivedUser `json:"users"`
	Total int64                  `json:"total"`
}

type ArchivePostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheManager
	now   func() time.Time
}

func NewArchivePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ArchiveRepository {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &ArchivePostgreSQL{db: db, cache: cacheManager, now: time.Now}
}

// Archive copies the users row into archive_users and deletes it, in one transaction
func (r *ArchivePostgreSQL) Archive(ctx context.Context, id string) (*models.ArchivedUser, error) {
	var archived *models.ArchivedUser

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		archived, err = r.moveToArchive(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.cache.InvalidateUser(ctx, id, archived.Email)
	cache.SafeInvalidatePattern(ctx, r.cache.Archive, cache.ListCacheConfig.Prefix+"*")
	return archived, nil
}

// moveToArchive locks the users row, inserts it into archive_users under the same ID and
// deletes the original. tx must be a transaction.
func (r *ArchivePostgreSQL) moveToArchive(tx *gorm.DB, id string) (*models.ArchivedUser, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, notFound(err, "user %s", id)
	}

	archived := models.NewArchivedUser(&user, r.now().UTC())
	if err := tx.Create(archived).Error; err != nil {
		return nil, fmt.Errorf("failed to insert archived user: %w", err)
	}

	if err := tx.Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
		return nil, fmt.Errorf("failed to remove active user: %w", err)
	}
	return archived, nil
}

// GetByID retrieves an archived user by its original ID
func (r *ArchivePostgreSQL) GetByID(ctx context.Context, id string) (*models.ArchivedUser, error) {
	cacheKey := "id:" + id
	var cached models.ArchivedUser
	if err := r.cache.Archive.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var archived models.ArchivedUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&archived).Error; err != nil {
		return nil, notFound(err, "archived user %s", id)
	}

	// Archived rows never change, so they can be cached for long
	cache.SafeSet(ctx, r.cache.Archive, cacheKey, &archived, cache.ArchiveCacheConfig)
	return &archived, nil
}

// List retrieves archived users, most recently archived first
func (r *ArchivePostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.ArchivedUser, int64, error) {
	filters.Normalize()

	page, err := cache.CacheOrExecute(ctx, r.cache.Archive, listCacheKey(filters), cache.ListCacheConfig.TTL, func() (archivePage, error) {
		query := func() *gorm.DB {
			return applyUserFilters(r.db.WithContext(ctx).Model(&models.ArchivedUser{}), filters)
		}

		var total int64
		if err := query().Count(&total).Error; err != nil {
			return archivePage{}, fmt.Errorf("failed to count archived users: %w", err)
		}

		var users []*models.ArchivedUser
		err := applyPaginationAndSort(query(), "archived_at", "desc", filters.Limit, filters.Offset).
			Find(&users).Error
		if err != nil {
			return archivePage{}, fmt.Errorf("failed to list archived users: %w", err)
		}
		return archivePage{Users: users, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return page.Users, page.Total, nil
}
