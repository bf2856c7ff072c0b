package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/user-admin-service/internal/models"
	"github.com/SAP-F-2025/user-admin-service/internal/utils"
	"github.com/SAP-F-2025/user-admin-service/internal/validator"
)

// Common service errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrArchivedUserNotFound = errors.New("archived user not found")
	ErrInvalidRole          = models.ErrInvalidRole

	// ErrDuplicateEmail carries the unique-violation code so MapDatabaseError renders it
	ErrDuplicateEmail = &utils.DatabaseError{
		Code:    utils.CodeUniqueViolation,
		Message: "user with this email already exists",
	}
)

type ValidationErrors = validator.ValidationErrors

// IdentityServiceError wraps a failed call to the external identity service
type IdentityServiceError struct {
	Op  string
	Err error
}

func (e *IdentityServiceError) Error() string {
	return fmt.Sprintf("identity service %s: %v", e.Op, e.Err)
}

func (e *IdentityServiceError) Unwrap() error {
	return e.Err
}

func identityError(op string, err error) error {
	return &IdentityServiceError{Op: op, Err: err}
}
