package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/user-admin-service/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGoChannelPublisher_PublishUserCreated(t *testing.T) {
	publisher, pubSub := NewGoChannelPublisher(discardLogger())
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, TypeUserCreated)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	err = publisher.PublishUserCreated(ctx, UserCreatedEvent{UserID: "u1", Email: "a@b.com", Role: models.RoleTrainee})
	if err != nil {
		t.Fatalf("PublishUserCreated: %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		if got := msg.Metadata.Get("event_type"); got != TypeUserCreated {
			t.Errorf("expected metadata event_type %q, got %q", TypeUserCreated, got)
		}

		var event struct {
			ID     string           `json:"id"`
			Type   string           `json:"type"`
			Source string           `json:"source"`
			Data   UserCreatedEvent `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if event.ID != msg.UUID {
			t.Errorf("message UUID %q should match event ID %q", msg.UUID, event.ID)
		}
		if event.Source != EventSource {
			t.Errorf("expected source %q, got %q", EventSource, event.Source)
		}
		if event.Data.UserID != "u1" || event.Data.Role != models.RoleTrainee {
			t.Errorf("unexpected data %+v", event.Data)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestNewEventPublisher_DefaultsToGoChannel(t *testing.T) {
	publisher, err := NewEventPublisher(nil, discardLogger())
	if err != nil {
		t.Fatalf("NewEventPublisher: %v", err)
	}
	defer publisher.Close()

	// No subscribers: the message is dropped without error
	if err := publisher.PublishUserArchived(context.Background(), UserArchivedEvent{UserID: "u1"}); err != nil {
		t.Fatalf("PublishUserArchived: %v", err)
	}
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(discardLogger())
	ctx := context.Background()

	_ = mock.PublishUserCreated(ctx, UserCreatedEvent{UserID: "u1"})
	_ = mock.PublishUserRoleChanged(ctx, UserRoleChangedEvent{UserID: "u1", OldRole: models.RoleTrainee, NewRole: models.RoleTrainer})

	events := mock.GetPublishedEvents()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Type != TypeUserRoleChanged {
		t.Errorf("expected %s, got %s", TypeUserRoleChanged, events[1].Type)
	}
	if events[0].ID == "" || events[0].Version != EventVersion {
		t.Errorf("envelope not populated: %+v", events[0])
	}

	mock.ClearEvents()
	if len(mock.GetPublishedEvents()) != 0 {
		t.Error("ClearEvents should drop recorded events")
	}

	boom := errors.New("broker down")
	mock.FailWith(boom)
	if err := mock.PublishUserArchived(ctx, UserArchivedEvent{UserID: "u1"}); !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
}
