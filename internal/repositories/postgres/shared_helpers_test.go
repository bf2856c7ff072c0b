package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/user-admin-service/internal/config"
	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories"
)

// newDryRunDB returns a gorm handle that renders SQL without connecting
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=test dbname=test sslmode=disable"), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db
}

func TestApplyUserFilters(t *testing.T) {
	db := newDryRunDB(t)

	var users []*models.User
	filters := repositories.UserFilters{Query: " Ada ", Role: models.RoleTrainer, Limit: 20, Offset: 40}
	stmt := applyPaginationAndSort(
		applyUserFilters(db.Model(&models.User{}), filters),
		"email", "asc", filters.Limit, filters.Offset,
	).Find(&users).Statement

	sql := stmt.SQL.String()
	for _, want := range []string{"LOWER(email) LIKE", "role = ", "ORDER BY email ASC", "LIMIT", "OFFSET"} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in %s", want, sql)
		}
	}

	var sawLike, sawRole bool
	for _, v := range stmt.Vars {
		if v == "%ada%" {
			sawLike = true
		}
		if v == models.RoleTrainer {
			sawRole = true
		}
	}
	if !sawLike || !sawRole {
		t.Errorf("unexpected vars %v", stmt.Vars)
	}
}

func TestApplyPaginationAndSort_RejectsUnknownColumn(t *testing.T) {
	db := newDryRunDB(t)

	var users []*models.User
	stmt := applyPaginationAndSort(db.Model(&models.User{}), "password; DROP TABLE users", "sideways", 0, 0).
		Find(&users).Statement

	sql := stmt.SQL.String()
	if !strings.Contains(sql, "ORDER BY created_at DESC") {
		t.Errorf("expected default ordering, got %s", sql)
	}
	if strings.Contains(sql, "DROP") {
		t.Errorf("unsafe column leaked into SQL: %s", sql)
	}
}

func TestNotFound(t *testing.T) {
	err := notFound(gorm.ErrRecordNotFound, "user %s", "u1")
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "user u1") {
		t.Errorf("unexpected message %q", err)
	}

	other := errors.New("connection reset")
	if notFound(other, "user %s", "u1") != other {
		t.Error("non not-found errors should pass through")
	}
}

func TestRepositoryManager_InitializeRequiresBackendConfig(t *testing.T) {
	rm := NewRepositoryManager(RepositoryConfig{DB: newDryRunDB(t)})
	if err := rm.Initialize(); !errors.Is(err, config.ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
	if err := rm.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown before init: %v", err)
	}
}
