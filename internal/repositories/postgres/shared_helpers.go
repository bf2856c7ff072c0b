package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/user-admin-service/internal/cache"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories"
)

// listCacheKey identifies one page of a listing; filters must be normalized
func listCacheKey(filters repositories.UserFilters) string {
	return fmt.Sprintf("%s%s:%s:%d:%d", cache.ListCacheConfig.Prefix,
		strings.ToLower(strings.TrimSpace(filters.Query)), filters.Role, filters.Limit, filters.Offset)
}

// applyUserFilters applies search and role filters shared by users and archive_users
func applyUserFilters(query *gorm.DB, filters repositories.UserFilters) *gorm.DB {
	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(COALESCE(full_name, '')) LIKE ?", like, like)
	}
	if filters.Role != "" {
		query = query.Where("role = ?", filters.Role)
	}
	return query
}

// applyPaginationAndSort orders by a whitelisted column and pages the query
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	allowedSortColumns := map[string]bool{
		"created_at":  true,
		"updated_at":  true,
		"archived_at": true,
		"email":       true,
		"full_name":   true,
		"role":        true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if strings.EqualFold(sortOrder, "asc") {
		sortOrder = "ASC"
	} else {
		sortOrder = "DESC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// notFound converts gorm's not-found error into repositories.ErrNotFound
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, repositories.ErrNotFound)...)
	}
	return err
}
