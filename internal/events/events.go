package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/user-admin-service/internal/models"
)

const (
	EventSource  = "user-admin-service"
	EventVersion = "1.0"

	TypeUserCreated     = "user.created"
	TypeUserRoleChanged = "user.role_changed"
	TypeUserArchived    = "user.archived"
)

// Event is the envelope written to the broker
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type UserCreatedEvent struct {
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CreatedBy string          `json:"created_by,omitempty"`
}

type UserRoleChangedEvent struct {
	UserID    string          `json:"user_id"`
	OldRole   models.UserRole `json:"old_role"`
	NewRole   models.UserRole `json:"new_role"`
	ChangedBy string          `json:"changed_by,omitempty"`
}

type UserArchivedEvent struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	ArchivedBy string    `json:"archived_by,omitempty"`
	ArchivedAt time.Time `json:"archived_at"`
}

// EventPublisher publishes user lifecycle events
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, event UserCreatedEvent) error
	PublishUserRoleChanged(ctx context.Context, event UserRoleChangedEvent) error
	PublishUserArchived(ctx context.Context, event UserArchivedEvent) error
	Close() error
}

func newEvent(eventType string, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
