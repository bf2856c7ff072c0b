package validator

import (
	"github.com/SAP-F-2025/user-admin-service/internal/models"
)

// ValidateRoleChange checks the rules for changing a user's role
func ValidateRoleChange(actorID string, target *models.User, newRole models.UserRole) ValidationErrors {
	var errors ValidationErrors

	if !newRole.IsValid() {
		errors = append(errors, ValidationError{
			Field:   "role",
			Message: "must be one of admin, trainer, trainee",
			Value:   newRole,
			Rule:    "user_role",
		})
	}

	if actorID != "" && actorID == target.ID && newRole != target.Role {
		errors = append(errors, ValidationError{
			Field:   "id",
			Message: "administrators cannot change their own role",
			Value:   target.ID,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateArchive checks the rules for archiving a user
func ValidateArchive(actorID string, target *models.User) ValidationErrors {
	var errors ValidationErrors

	if actorID != "" && actorID == target.ID {
		errors = append(errors, ValidationError{
			Field:   "id",
			Message: "administrators cannot archive their own account",
			Value:   target.ID,
			Rule:    "business_logic",
		})
	}

	return errors
}
