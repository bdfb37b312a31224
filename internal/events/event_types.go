package events

import (
	"time"

	"github.com/spec-kit/support-relay/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventThreadBound    EventType = "thread_bound"
	EventMessageRelayed EventType = "message_relayed"
	EventBatchFlushed   EventType = "batch_flushed"
	EventAdminAdded     EventType = "admin_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketKey   string `json:"ticket_key"`
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// ThreadBoundPayload payload.
type ThreadBoundPayload struct {
	TicketKey string `json:"ticket_key"`
	ThreadID  int64  `json:"thread_id"`
}

// MessageRelayedPayload payload.
type MessageRelayedPayload struct {
	Direction domain.Direction   `json:"direction"`
	Kind      domain.PayloadKind `json:"kind"`
	Delivered bool               `json:"delivered"`
}

// BatchFlushedPayload payload.
type BatchFlushedPayload struct {
	GroupKey  string      `json:"group_key"`
	Origin    domain.Role `json:"origin"`
	ItemCount int         `json:"item_count"`
	Delivered bool        `json:"delivered"`
}

// AdminAddedPayload payload.
type AdminAddedPayload struct {
	AdminID int64 `json:"admin_id"`
	AddedBy int64 `json:"added_by"`
}
