package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/user-admin-service/internal/events"
	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/repositories"
	"github.com/SAP-F-2025/user-admin-service/internal/utils"
	"github.com/SAP-F-2025/user-admin-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CREATE =====

func (s *userService) CreateUser(ctx context.Context, req *models.CreateUserRequest, actorID string) (result CreateUserResult) {
	logger := utils.LoggerFromContext(ctx, s.logger)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("create user panicked: %v", r)
			logger.Error("Create user failed", "error", err)
			result = CreateUserFailure{Err: err, Message: utils.MapDatabaseError(nil)}
		}
	}()

	fail := func(err error) CreateUserResult {
		logger.Error("Create user failed", "error", err)
		return CreateUserFailure{Err: err, Message: utils.MapDatabaseError(err)}
	}

	if req == nil {
		return fail(ValidationErrors{{Field: "body", Message: "is required", Rule: "required"}})
	}

	// Normalize a copy; the caller's request stays as submitted
	normalized := *req
	req = &normalized
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if role, err := models.ParseUserRole(string(req.Role)); err == nil {
		req.Role = role
	}

	if err := s.validator.Validate(req); err != nil {
		return fail(err)
	}

	logger.Info("Creating user", "email", req.Email, "role", req.Role, "actor_id", actorID)

	exists, err := s.repo.AuthAdmin().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return fail(identityError("lookup", err))
	}
	if exists {
		return fail(ErrDuplicateEmail)
	}

	exists, err = s.repo.User().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return fail(fmt.Errorf("failed to check existing user: %w", err))
	}
	if exists {
		return fail(ErrDuplicateEmail)
	}

	account, err := s.repo.AuthAdmin().CreateUser(ctx, repositories.CreateAuthUserParams{
		Email:        req.Email,
		Password:     req.Password,
		EmailConfirm: true,
		UserMetadata: repositories.UserMetadata{
			FullName: req.FullName,
			Role:     req.Role,
		},
	})
	if err != nil {
		return fail(identityError("create user", err))
	}

	status := models.StatusActive
	user := &models.User{
		ID:           account.ID,
		Email:        account.Email,
		Role:         req.Role,
		Program:      req.Program,
		OtherProgram: req.OtherProgram,
		Status:       &status,
	}
	if req.FullName != "" {
		fullName := req.FullName
		user.FullName = &fullName
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		// Remove the orphaned account so the email can be retried
		if delErr := s.repo.AuthAdmin().DeleteUser(ctx, account.ID); delErr != nil {
			logger.Error("Failed to remove account after profile write failure",
				"user_id", account.ID, "error", delErr)
		}
		return fail(fmt.Errorf("failed to create user profile: %w", err))
	}

	s.publish(ctx, func(p events.EventPublisher) error {
		return p.PublishUserCreated(ctx, events.UserCreatedEvent{
			UserID:    user.ID,
			Email:     user.Email,
			Role:      user.Role,
			CreatedBy: actorID,
		})
	})

	logger.Info("User created successfully", "user_id", user.ID)
	return CreateUserSuccess{User: user}
}

// ===== READ =====

func (s *userService) GetUser(ctx context.Context, id string) (*models.UserView, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserView(user), nil
}

func (s *userService) ListUsers(ctx context.Context, filters repositories.UserFilters) (*models.UserListResponse, error) {
	filters.Normalize()

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	views := make([]*models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}

	return &models.UserListResponse{
		Users: views,
		Total: total,
		Page:  filters.Offset/filters.Limit + 1,
		Size:  filters.Limit,
	}, nil
}

func (s *userService) SearchUsers(ctx context.Context, query string, filters repositories.UserFilters) (*models.UserListResponse, error) {
	filters.Query = strings.TrimSpace(query)
	return s.ListUsers(ctx, filters)
}

// ===== ROLE =====

func (s *userService) UpdateRole(ctx context.Context, id string, role models.UserRole, actorID string) (*models.UserView, error) {
	logger := utils.LoggerFromContext(ctx, s.logger)

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if errs := validator.ValidateRoleChange(actorID, user, role); len(errs) > 0 {
		return nil, errs
	}

	oldRole := user.Role
	if oldRole == role {
		return toUserView(user), nil
	}

	if err := s.repo.AuthAdmin().UpdateRole(ctx, id, role); err != nil {
		return nil, identityError("update role", err)
	}

	if err := s.repo.User().UpdateRole(ctx, id, role); err != nil {
		if revertErr := s.repo.AuthAdmin().UpdateRole(ctx, id, oldRole); revertErr != nil {
			logger.Error("Failed to revert account role", "user_id", id, "error", revertErr)
		}
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	user.Role = role

	s.publish(ctx, func(p events.EventPublisher) error {
		return p.PublishUserRoleChanged(ctx, events.UserRoleChangedEvent{
			UserID:    id,
			OldRole:   oldRole,
			NewRole:   role,
			ChangedBy: actorID,
		})
	})

	logger.Info("User role updated", "user_id", id, "old_role", oldRole, "new_role", role, "actor_id", actorID)
	return toUserView(user), nil
}

// ===== ARCHIVE =====

func (s *userService) ArchiveUser(ctx context.Context, id string, actorID string) (*models.ArchivedUser, error) {
	logger := utils.LoggerFromContext(ctx, s.logger)

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if errs := validator.ValidateArchive(actorID, user); len(errs) > 0 {
		return nil, errs
	}

	archived, err := s.repo.Archive().Archive(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to archive user: %w", err)
	}

	s.publish(ctx, func(p events.EventPublisher) error {
		return p.PublishUserArchived(ctx, events.UserArchivedEvent{
			UserID:     archived.ID,
			Email:      archived.Email,
			ArchivedBy: actorID,
			ArchivedAt: archived.ArchivedAt,
		})
	})

	logger.Info("User archived", "user_id", id, "actor_id", actorID)
	return archived, nil
}

func (s *userService) GetArchivedUser(ctx context.Context, id string) (*models.ArchivedUser, error) {
	archived, err := s.repo.Archive().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrArchivedUserNotFound
		}
		return nil, fmt.Errorf("failed to get archived user: %w", err)
	}
	return archived, nil
}

func (s *userService) ListArchivedUsers(ctx context.Context, filters repositories.UserFilters) (*models.ArchivedUserListResponse, error) {
	filters.Normalize()

	users, total, err := s.repo.Archive().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived users: %w", err)
	}

	return &models.ArchivedUserListResponse{
		Users: users,
		Total: total,
		Page:  filters.Offset/filters.Limit + 1,
		Size:  filters.Limit,
	}, nil
}

// ===== HELPERS =====

func (s *userService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// publish sends an event without failing the caller
func (s *userService) publish(ctx context.Context, send func(events.EventPublisher) error) {
	if s.publisher == nil {
		return
	}
	if err := send(s.publisher); err != nil {
		utils.LoggerFromContext(ctx, s.logger).Warn("Failed to publish event", "error", err)
	}
}

func toUserView(u *models.User) *models.UserView {
	return &models.UserView{
		User:       u,
		Initials:   utils.GetUserInitials(u.DisplayName()),
		BadgeClass: utils.GetRoleBadgeClass(string(u.Role)),
		CreatedOn:  utils.FormatTime(u.CreatedAt),
	}
}
