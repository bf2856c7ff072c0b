package casdoor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/google/uuid"

	"github.com/SAP-F-2025/user-admin-service/internal/cache"
	"github.com/SAP-F-2025/user-admin-service/internal/config"
	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories"
	"github.com/SAP-F-2025/user-admin-service/internal/utils"
)

const (
	propertyFullName = "full_name"
	propertyRole     = "role"
)

// adminClient is the subset of the SDK client used here
type adminClient interface {
	AddUser(user *casdoorsdk.User) (bool, error)
	GetUserByEmail(email string) (*casdoorsdk.User, error)
	GetUserByUserId(userId string) (*casdoorsdk.User, error)
	UpdateUserForColumns(user *casdoorsdk.User, columns []string) (bool, error)
	DeleteUser(user *casdoorsdk.User) (bool, error)
}

type UserCasdoor struct {
	client adminClient
	cache  *cache.CacheManager
	config config.BackendConfig

	now func() time.Time
}

func NewUserCasdoor(client adminClient, cfg config.BackendConfig, cacheManager *cache.CacheManager) repositories.AuthAdminRepository {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &UserCasdoor{
		client: client,
		cache:  cacheManager,
		config: cfg,
		now:    time.Now,
	}
}

// ===== CONVERSION METHODS =====

func (u *UserCasdoor) convertCasdoorUserToModel(casdoorUser *casdoorsdk.User) *models.AuthUser {
	if casdoorUser == nil {
		return nil
	}

	var createdAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}

	fullName := casdoorUser.DisplayName
	if name, ok := casdoorUser.Properties[propertyFullName]; ok && name != "" {
		fullName = name
	}

	return &models.AuthUser{
		ID:             casdoorUser.Id,
		Email:          casdoorUser.Email,
		EmailConfirmed: casdoorUser.EmailVerified,
		FullName:       fullName,
		Role:           u.roleOf(casdoorUser),
		CreatedAt:      createdAt,
	}
}

// roleOf reads the role from user metadata, falling back to the account type
func (u *UserCasdoor) roleOf(casdoorUser *casdoorsdk.User) models.UserRole {
	if role, err := models.ParseUserRole(casdoorUser.Properties[propertyRole]); err == nil {
		return role
	}
	if role, err := models.ParseUserRole(casdoorUser.Type); err == nil {
		return role
	}
	if casdoorUser.IsAdmin {
		return models.RoleAdmin
	}
	return models.RoleTrainee
}

// translateError gives identity-service failures the database error codes callers already understand
func translateError(op string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already exist"), strings.Contains(msg, "duplicate"):
		return fmt.Errorf("%s: %w", op, &utils.DatabaseError{Code: utils.CodeUniqueViolation, Message: err.Error()})
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "permission"), strings.Contains(msg, "forbidden"):
		return fmt.Errorf("%s: %w", op, &utils.DatabaseError{Code: utils.CodePermissionDenied, Message: err.Error()})
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// ===== WRITE OPERATIONS =====

// CreateUser creates an account with a confirmed email and role metadata
func (u *UserCasdoor) CreateUser(ctx context.Context, params repositories.CreateAuthUserParams) (*models.AuthUser, error) {
	id := uuid.New().String()
	role := params.UserMetadata.Role

	casdoorUser := &casdoorsdk.User{
		Owner:             u.config.Organization,
		Name:              id,
		Id:                id,
		CreatedTime:       u.now().UTC().Format(time.RFC3339),
		Type:              string(role),
		Password:          params.Password,
		DisplayName:       params.UserMetadata.FullName,
		Email:             params.Email,
		EmailVerified:     params.EmailConfirm,
		SignupApplication: u.config.Application,
		IsAdmin:           role == models.RoleAdmin,
		Properties: map[string]string{
			propertyFullName: params.UserMetadata.FullName,
			propertyRole:     string(role),
		},
	}

	ok, err := u.client.AddUser(casdoorUser)
	if err != nil {
		return nil, translateError("failed to create user in identity service", err)
	}
	if !ok {
		return nil, errors.New("identity service rejected the new account")
	}

	cache.SafeDelete(ctx, u.cache.Exists, "email:"+params.Email)

	user := u.convertCasdoorUserToModel(casdoorUser)
	return user, nil
}

// UpdateRole rewrites the role metadata of an account
func (u *UserCasdoor) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return translateError("failed to get user from identity service", err)
	}
	if casdoorUser == nil {
		return fmt.Errorf("account %s: %w", id, repositories.ErrNotFound)
	}

	if casdoorUser.Properties == nil {
		casdoorUser.Properties = map[string]string{}
	}
	casdoorUser.Properties[propertyRole] = string(role)
	casdoorUser.Type = string(role)
	casdoorUser.IsAdmin = role == models.RoleAdmin

	ok, err := u.client.UpdateUserForColumns(casdoorUser, []string{"type", "is_admin", "properties"})
	if err != nil {
		return translateError("failed to update user role in identity service", err)
	}
	if !ok {
		return errors.New("identity service rejected the role update")
	}

	u.cache.InvalidateUser(ctx, id, casdoorUser.Email)
	return nil
}

// DeleteUser removes an account. Deleting a missing account is not an error.
func (u *UserCasdoor) DeleteUser(ctx context.Context, id string) error {
	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return translateError("failed to get user from identity service", err)
	}
	if casdoorUser == nil {
		return nil
	}

	if _, err := u.client.DeleteUser(casdoorUser); err != nil {
		return translateError("failed to delete user in identity service", err)
	}

	u.cache.InvalidateUser(ctx, id, casdoorUser.Email)
	return nil
}

// ===== READ OPERATIONS =====

// GetByEmail retrieves an account by email
func (u *UserCasdoor) GetByEmail(ctx context.Context, email string) (*models.AuthUser, error) {
	cacheKey := "email:" + email
	var cached models.AuthUser
	if err := u.cache.Auth.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	casdoorUser, err := u.client.GetUserByEmail(email)
	if err != nil {
		return nil, translateError("failed to get user by email from identity service", err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("account with email %s: %w", email, repositories.ErrNotFound)
	}

	user := u.convertCasdoorUserToModel(casdoorUser)
	cache.SafeSet(ctx, u.cache.Auth, cacheKey, user, cache.AuthCacheConfig)
	cache.SafeSet(ctx, u.cache.Auth, "id:"+user.ID, user, cache.AuthCacheConfig)

	return user, nil
}

// ExistsByEmail checks if an account exists for the email
func (u *UserCasdoor) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	cacheKey := "email:" + email
	if exists, err := u.cache.Exists.GetString(ctx, cacheKey); err == nil {
		return exists == "true", nil
	}

	_, err := u.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// Only positive answers are cached so a new account is never hidden
	_ = u.cache.Exists.SetString(ctx, cacheKey, "true", cache.ExistsCacheConfig.TTL)
	return true, nil
}
