package utils

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL error codes surfaced by the hosted database
const (
	CodeUniqueViolation  = "23505"
	CodePermissionDenied = "42501"
)

const (
	dateNotAvailable  = "N/A"
	dateInvalid       = "Invalid Date"
	dateDisplayLayout = "Jan 2, 2006"

	defaultInitials = "U"

	badgeAdmin   = "bg-purple-100 text-purple-800"
	badgeTrainer = "bg-blue-100 text-blue-800"
	badgeTrainee = "bg-green-100 text-green-800"
	badgeDefault = "bg-gray-100 text-gray-800"

	msgDuplicateEmail   = "User with this email already exists"
	msgPermissionDenied = "Permission denied"
	msgUnexpected       = "An unexpected error occurred"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07",
	time.DateTime,
	time.DateOnly,
}

// DatabaseError is a backend error carrying a PostgreSQL-style code
type DatabaseError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *DatabaseError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// FormatDate renders a timestamp string as "Jan 2, 2006"
func FormatDate(input string) string {
	if input == "" {
		return dateNotAvailable
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t.Format(dateDisplayLayout)
		}
	}
	return dateInvalid
}

// FormatTime is FormatDate for values already parsed
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return dateNotAvailable
	}
	return t.Format(dateDisplayLayout)
}

// GetUserInitials returns up to two upper-cased initials of a display name
func GetUserInitials(name string) string {
	if name == "" {
		return defaultInitials
	}

	var initials []rune
	for _, part := range strings.Split(name, " ") {
		for _, r := range part {
			initials = append(initials, unicode.ToUpper(r))
			break
		}
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}

// GetRoleBadgeClass returns the badge CSS classes for a role; unknown roles get the gray badge
func GetRoleBadgeClass(role string) string {
	switch role {
	case "admin":
		return badgeAdmin
	case "trainer":
		return badgeTrainer
	case "trainee":
		return badgeTrainee
	default:
		return badgeDefault
	}
}

// MapDatabaseError turns a backend error into a message fit for end users
func MapDatabaseError(err error) string {
	if err == nil {
		return msgUnexpected
	}

	switch errorCode(err) {
	case CodeUniqueViolation:
		return msgDuplicateEmail
	case CodePermissionDenied:
		return msgPermissionDenied
	}

	if msg := errorMessage(err); msg != "" {
		return msg
	}
	return msgUnexpected
}

// errorMessage is err.Error() for errors whose method does not handle a nil receiver
func errorMessage(err error) (msg string) {
	defer func() {
		if recover() != nil {
			msg = ""
		}
	}()
	return err.Error()
}

// errorCode extracts a SQLSTATE-like code from err, if any
func errorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil {
		return pgErr.Code
	}

	var dbErr *DatabaseError
	if errors.As(err, &dbErr) && dbErr != nil {
		return dbErr.Code
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return CodeUniqueViolation
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique-constraint violation
func IsUniqueViolation(err error) bool {
	return err != nil && errorCode(err) == CodeUniqueViolation
}

// IsPermissionDenied reports whether err is a permission failure
func IsPermissionDenied(err error) bool {
	return err != nil && errorCode(err) == CodePermissionDenied
}
