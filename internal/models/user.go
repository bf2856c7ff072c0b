package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTrainer UserRole = "trainer"
	RoleTrainee UserRole = "trainee"
)

// UserStatus values stored in users.status
const (
	StatusActive = "active"
)

var ErrInvalidRole = errors.New("invalid user role")

// Roles lists every role in display order
func Roles() []UserRole {
	return []UserRole{RoleAdmin, RoleTrainer, RoleTrainee}
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTrainer, RoleTrainee:
		return true
	}
	return false
}

func (r UserRole) String() string {
	return string(r)
}

// ParseUserRole converts free text into a role. Only the three canonical roles are accepted.
func ParseUserRole(value string) (UserRole, error) {
	role := UserRole(strings.ToLower(strings.TrimSpace(value)))
	if !role.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, value)
	}
	return role, nil
}

// User mirrors a row of the users table. The ID is the identity-service account ID.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:255"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role         UserRole  `json:"role" gorm:"type:varchar(16);not null;index"`
	FullName     *string   `json:"full_name" gorm:"size:100"`
	Program      string    `json:"program" gorm:"size:255;not null;default:''"`
	OtherProgram string    `json:"other_program" gorm:"size:255;not null;default:''"`
	Status       *string   `json:"status" gorm:"size:32"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName returns the full name or an empty string when unset
func (u *User) DisplayName() string {
	if u == nil || u.FullName == nil {
		return ""
	}
	return *u.FullName
}

// ArchivedUser mirrors a row of the archive_users table
type ArchivedUser struct {
	ID           string    `json:"id" gorm:"primaryKey;size:255"`
	Email        string    `json:"email" gorm:"not null;size:255;index"`
	Role         UserRole  `json:"role" gorm:"type:varchar(16);not null"`
	FullName     *string   `json:"full_name" gorm:"size:100"`
	Program      string    `json:"program" gorm:"size:255;not null;default:''"`
	OtherProgram string    `json:"other_program" gorm:"size:255;not null;default:''"`
	CreatedAt    time.Time `json:"created_at"`
	ArchivedAt   time.Time `json:"archived_at" gorm:"not null;index"`
}

func (ArchivedUser) TableName() string {
	return "archive_users"
}

// NewArchivedUser copies an active user into its archived shape
func NewArchivedUser(u *User, archivedAt time.Time) *ArchivedUser {
	return &ArchivedUser{
		ID:           u.ID,
		Email:        u.Email,
		Role:         u.Role,
		FullName:     u.FullName,
		Program:      u.Program,
		OtherProgram: u.OtherProgram,
		CreatedAt:    u.CreatedAt,
		ArchivedAt:   archivedAt,
	}
}

// AuthUser is an account as held by the identity service
type AuthUser struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"email_confirmed"`
	FullName       string    `json:"full_name"`
	Role           UserRole  `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}
