package domain

import "time"

// TicketStatus enumerates lifecycle states for relay tickets.
type TicketStatus string

const (
	// TicketStatusNew marks a ticket created but not yet bound to an
	// administrator thread.
	TicketStatusNew TicketStatus = "NEW"
	// TicketStatusOpen marks a ticket with a bound thread; bidirectional
	// relay is active. No operation transitions a ticket out of OPEN.
	TicketStatusOpen TicketStatus = "OPEN"
)

// Ticket binds one end-user identity to one administrator-side thread.
type Ticket struct {
	ID          int64
	Key         string
	UserID      int64
	DisplayName string
	Status      TicketStatus
	WorkspaceID *int64
	ThreadID    *int64
	CreatedAt   time.Time
}

// Bound reports whether the ticket has an administrator thread attached.
func (t *Ticket) Bound() bool {
	return t != nil && t.ThreadID != nil
}
