package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/user-admin-service/internal/events"
	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories"
	"github.com/SAP-F-2025/user-admin-service/internal/utils"
	"github.com/SAP-F-2025/user-admin-service/internal/validator"
)

// ===== REPOSITORY FAKES =====

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	createErr error
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) put(u *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return &utils.DatabaseError{Code: utils.CodeUniqueViolation, Message: "duplicate key value"}
		}
	}
	user.CreatedAt = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) findByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.findByEmail(email)
	return err == nil, nil
}

func (r *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(filters.Query))
	var matched []*models.User
	for _, u := range r.users {
		if filters.Role != "" && u.Role != filters.Role {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.Email), q) && !strings.Contains(strings.ToLower(u.DisplayName()), q) {
			continue
		}
		cp := *u
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Email < matched[j].Email })

	total := int64(len(matched))
	start := min(filters.Offset, len(matched))
	end := min(start+filters.Limit, len(matched))
	return matched[start:end], total, nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeArchiveRepo struct {
	users    *fakeUserRepo
	archived map[string]*models.ArchivedUser
}

func (r *fakeArchiveRepo) Archive(ctx context.Context, id string) (*models.ArchivedUser, error) {
	u, err := r.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	archived := models.NewArchivedUser(u, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	r.archived[id] = archived
	_ = r.users.remove(id)
	return archived, nil
}

func (r *fakeArchiveRepo) GetByID(ctx context.Context, id string) (*models.ArchivedUser, error) {
	a, ok := r.archived[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return a, nil
}

func (r *fakeArchiveRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.ArchivedUser, int64, error) {
	var out []*models.ArchivedUser
	for _, a := range r.archived {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

type fakeAuthAdmin struct {
	mu        sync.Mutex
	accounts  map[string]*models.AuthUser
	created   []repositories.CreateAuthUserParams
	deleted   []string
	nextID    int
	createErr error
	existsErr error
	updateErr error
}

func newFakeAuthAdmin() *fakeAuthAdmin {
	return &fakeAuthAdmin{accounts: map[string]*models.AuthUser{}}
}

func (a *fakeAuthAdmin) CreateUser(ctx context.Context, params repositories.CreateAuthUserParams) (*models.AuthUser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.createErr != nil {
		return nil, a.createErr
	}
	a.nextID++
	account := &models.AuthUser{
		ID:             fmt.Sprintf("acct-%d", a.nextID),
		Email:          params.Email,
		EmailConfirmed: params.EmailConfirm,
		FullName:       params.UserMetadata.FullName,
		Role:           params.UserMetadata.Role,
	}
	a.accounts[account.ID] = account
	a.created = append(a.created, params)
	return account, nil
}

func (a *fakeAuthAdmin) findByEmail(email string) (*models.AuthUser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, acct := range a.accounts {
		if acct.Email == email {
			return acct, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (a *fakeAuthAdmin) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if a.existsErr != nil {
		return false, a.existsErr
	}
	_, err := a.findByEmail(email)
	return err == nil, nil
}

func (a *fakeAuthAdmin) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.updateErr != nil {
		return a.updateErr
	}
	acct, ok := a.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	acct.Role = role
	return nil
}

func (a *fakeAuthAdmin) DeleteUser(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.accounts, id)
	a.deleted = append(a.deleted, id)
	return nil
}

type fakeRepository struct {
	user      *fakeUserRepo
	archive   *fakeArchiveRepo
	authAdmin *fakeAuthAdmin
}

func newFakeRepository() *fakeRepository {
	users := newFakeUserRepo()
	return &fakeRepository{
		user:      users,
		archive:   &fakeArchiveRepo{users: users, archived: map[string]*models.ArchivedUser{}},
		authAdmin: newFakeAuthAdmin(),
	}
}

func (r *fakeRepository) User() repositories.UserRepository           { return r.user }
func (r *fakeRepository) Archive() repositories.ArchiveRepository     { return r.archive }
func (r *fakeRepository) AuthAdmin() repositories.AuthAdminRepository { return r.authAdmin }
func (r *fakeRepository) Ping(ctx context.Context) error              { return nil }
func (r *fakeRepository) Close() error                                { return nil }

type fakeRepositoryManager struct {
	repo      repositories.Repository
	healthErr error
	shutdowns int
}

func (m *fakeRepositoryManager) Initialize() error                      { return nil }
func (m *fakeRepositoryManager) GetRepository() repositories.Repository { return m.repo }
func (m *fakeRepositoryManager) HealthCheck(ctx context.Context) error  { return m.healthErr }
func (m *fakeRepositoryManager) Shutdown(ctx context.Context) error {
	m.shutdowns++
	return nil
}

// ===== FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() (*userService, *fakeRepository, *events.MockEventPublisher) {
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewUserService(repo, publisher, testLogger(), validator.New()).(*userService)
	return svc, repo, publisher
}

func newTestValidator() *validator.Validator { return validator.New() }

func strPtr(s string) *string { return &s }
