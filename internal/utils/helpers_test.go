package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: "N/A"},
		{input: "not-a-date", want: "Invalid Date"},
		{input: "2024-01-05", want: "Jan 5, 2024"},
		{input: "2024-12-31T23:15:00Z", want: "Dec 31, 2024"},
		{input: "2023-07-04T08:30:00.123456+00:00", want: "Jul 4, 2023"},
		{input: "2023-07-04 08:30:00", want: "Jul 4, 2023"},
		{input: "2023-07-04 08:30:00+00", want: "Jul 4, 2023"},
		{input: "2024-02-30", want: "Invalid Date"},
		{input: "   ", want: "Invalid Date"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FormatDate(tt.input); got != tt.want {
				t.Errorf("FormatDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetUserInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "", want: "U"},
		{name: "Ada Lovelace", want: "AL"},
		{name: "Madonna", want: "M"},
		{name: "john ronald reuel tolkien", want: "JR"},
		{name: "émile zola", want: "ÉZ"},
		{name: "Ada  Lovelace", want: "AL"},
		{name: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetUserInitials(tt.name); got != tt.want {
				t.Errorf("GetUserInitials(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestGetRoleBadgeClass(t *testing.T) {
	seen := map[string]string{}
	for _, role := range []string{"admin", "trainer", "trainee"} {
		class := GetRoleBadgeClass(role)
		if prev, dup := seen[class]; dup {
			t.Errorf("roles %q and %q share class %q", prev, role, class)
		}
		seen[class] = role
	}

	if got := GetRoleBadgeClass("bogus"); got != "bg-gray-100 text-gray-800" {
		t.Errorf("unexpected default class %q", got)
	}
	if GetRoleBadgeClass("") != GetRoleBadgeClass("bogus") {
		t.Error("empty role should fall back to default class")
	}
}

func TestMapDatabaseError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "unique violation", err: &DatabaseError{Code: "23505"}, want: "User with this email already exists"},
		{name: "permission denied", err: &DatabaseError{Code: "42501"}, want: "Permission denied"},
		{name: "message only", err: &DatabaseError{Message: "x"}, want: "x"},
		{name: "empty", err: &DatabaseError{}, want: "An unexpected error occurred"},
		{name: "nil", err: nil, want: "An unexpected error occurred"},
		{name: "pg error", err: &pgconn.PgError{Code: "23505", Message: "duplicate key value"}, want: "User with this email already exists"},
		{name: "wrapped", err: fmt.Errorf("insert user: %w", &DatabaseError{Code: "42501"}), want: "Permission denied"},
		{name: "gorm duplicate", err: gorm.ErrDuplicatedKey, want: "User with this email already exists"},
		{name: "plain", err: errors.New("connection refused"), want: "connection refused"},
		{name: "typed nil database error", err: (*DatabaseError)(nil), want: "An unexpected error occurred"},
		{name: "typed nil pg error", err: (*pgconn.PgError)(nil), want: "An unexpected error occurred"},
		{name: "wrapped typed nil", err: fmt.Errorf("insert user: %w", (*DatabaseError)(nil)), want: "insert user: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapDatabaseError(tt.err); got != tt.want {
				t.Errorf("MapDatabaseError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorClassifiers(t *testing.T) {
	if !IsUniqueViolation(&pgconn.PgError{Code: CodeUniqueViolation}) {
		t.Error("expected unique violation")
	}
	if IsUniqueViolation(nil) || IsPermissionDenied(nil) {
		t.Error("nil is not a coded error")
	}
	if !IsPermissionDenied(fmt.Errorf("wrap: %w", &DatabaseError{Code: CodePermissionDenied})) {
		t.Error("expected permission denied")
	}
}
