package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-relay/internal/domain"
	"github.com/spec-kit/support-relay/internal/events"
	"github.com/spec-kit/support-relay/internal/observability"
	"github.com/spec-kit/support-relay/internal/repository"
	"github.com/spec-kit/support-relay/internal/transport"
	apperrors "github.com/spec-kit/support-relay/pkg/util"
)

// TicketRouter turns classified inbound events into outbound transport
// calls plus audit writes.
type TicketRouter struct {
	tickets     repository.TicketRepository
	log         repository.MessageLogRepository
	roles       *RoleService
	transport   transport.Transport
	dispatcher  events.Dispatcher
	metrics     *observability.RelayMetrics
	logger      *zap.Logger
	workspaceID int64
}

// RouterDependencies bundles collaborators for the router.
type RouterDependencies struct {
	TicketRepo  repository.TicketRepository
	LogRepo     repository.MessageLogRepository
	Roles       *RoleService
	Transport   transport.Transport
	Dispatcher  events.Dispatcher
	Metrics     *observability.RelayMetrics
	Logger      *zap.Logger
	WorkspaceID int64
}

// NewTicketRouter constructs the router.
func NewTicketRouter(deps RouterDependencies) *TicketRouter {
	return &TicketRouter{
		tickets:     deps.TicketRepo,
		log:         deps.LogRepo,
		roles:       deps.Roles,
		transport:   deps.Transport,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		workspaceID: deps.WorkspaceID,
	}
}

// Workspace returns the administrator workspace id threads are created in.
func (r *TicketRouter) Workspace() int64 {
	return r.workspaceID
}

// Intake persists a new ticket for the user's first-contact payload,
// creates an administrator thread and binds it. The ticket is returned
// even when routing fails, so later messages from the same session can
// still be logged; a non-nil error alongside a non-nil ticket means the
// request could not be routed yet.
func (r *TicketRouter) Intake(ctx context.Context, user domain.Identity, payload domain.Payload) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Key:         generateTicketKey(),
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Status:      domain.TicketStatusNew,
	}
	if err := r.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	r.metrics.RecordTicketCreated()
	r.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketKey:   ticket.Key,
			UserID:      ticket.UserID,
			DisplayName: ticket.DisplayName,
		},
	})

	r.AppendLog(ctx, ticket.ID, domain.DirectionFromUser, payload)

	if r.workspaceID == 0 {
		r.logger.Warn("workspace id not configured; cannot create thread",
			zap.String("ticket_key", ticket.Key))
		return ticket, apperrors.NewThreadUnavailable(nil)
	}

	threadID, err := r.transport.CreateThread(ctx, r.workspaceID, threadTitle(ticket))
	if err != nil {
		r.logger.Error("thread creation failed",
			zap.String("ticket_key", ticket.Key), zap.Error(err))
		return ticket, apperrors.NewThreadUnavailable(err)
	}

	if err := r.tickets.BindThread(ctx, ticket.ID, r.workspaceID, threadID); err != nil {
		return ticket, apperrors.NewStoreFailure(err)
	}
	workspaceID := r.workspaceID
	ticket.WorkspaceID = &workspaceID
	ticket.ThreadID = &threadID
	ticket.Status = domain.TicketStatusOpen
	r.metrics.RecordThreadBound()
	r.publish(ctx, events.Event{
		Type:     events.EventThreadBound,
		TicketID: ticket.ID,
		Payload: events.ThreadBoundPayload{
			TicketKey: ticket.Key,
			ThreadID:  threadID,
		},
	})

	// The framed intake payload is the first message in the new thread.
	// A failed post is degraded delivery, not a failed intake.
	dest := transport.ThreadDestination(r.workspaceID, threadID)
	var sendErr error
	switch payload.Kind {
	case domain.PayloadPhoto:
		sendErr = r.transport.SendPhoto(ctx, dest, payload.Photo, frameIntakePhotoCaption(ticket, payload.Caption))
	default:
		sendErr = r.transport.SendText(ctx, dest, frameIntakeText(ticket, payload.Text))
	}
	if sendErr != nil {
		r.metrics.RecordDeliveryFailure()
		r.logger.Error("intake delivery failed",
			zap.String("ticket_key", ticket.Key), zap.Error(sendErr))
	}
	return ticket, nil
}

// RelayFromUser forwards a user's message to the bound thread.
func (r *TicketRouter) RelayFromUser(ctx context.Context, user domain.Identity, payload domain.Payload) error {
	ticket, err := r.ActiveTicketFor(ctx, user.ID)
	if err != nil {
		return err
	}

	r.AppendLog(ctx, ticket.ID, domain.DirectionFromUser, payload)

	dest := transport.ThreadDestination(*ticket.WorkspaceID, *ticket.ThreadID)
	var sendErr error
	var reply string
	switch payload.Kind {
	case domain.PayloadPhoto:
		sendErr = r.transport.SendPhoto(ctx, dest, payload.Photo, frameUserPhotoCaption(payload.Caption))
		reply = photoDeliveryFailed
	default:
		sendErr = r.transport.SendText(ctx, dest, frameUserText(payload.Text))
		reply = deliveryFailedText
	}
	return r.finishRelay(ctx, ticket, domain.DirectionFromUser, payload.Kind, sendErr, reply)
}

// RelayFromAdmin forwards an administrator's thread message to the
// ticket's user. Unknown threads surface as a coded error the caller
// drops silently; non-admin senders are rejected.
func (r *TicketRouter) RelayFromAdmin(ctx context.Context, threadID int64, sender domain.Identity, payload domain.Payload) error {
	ticket, err := r.TicketForThread(ctx, threadID)
	if err != nil {
		return err
	}
	if !r.roles.IsAdmin(ctx, sender.ID) {
		return apperrors.NewAccessDenied()
	}

	r.AppendLog(ctx, ticket.ID, domain.DirectionFromAdmin, payload)

	dest := transport.UserDestination(ticket.UserID)
	var sendErr error
	switch payload.Kind {
	case domain.PayloadPhoto:
		sendErr = r.transport.SendPhoto(ctx, dest, payload.Photo, frameAdminPhotoCaption(payload.Caption))
	default:
		sendErr = r.transport.SendText(ctx, dest, frameAdminText(payload.Text))
	}
	return r.finishRelay(ctx, ticket, domain.DirectionFromAdmin, payload.Kind, sendErr, "")
}

// ActiveTicketFor resolves the user's newest bound ticket.
func (r *TicketRouter) ActiveTicketFor(ctx context.Context, userID int64) (*domain.Ticket, error) {
	ticket, err := r.tickets.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNoActiveTicket()
		}
		return nil, apperrors.NewStoreFailure(err)
	}
	return ticket, nil
}

// TicketForThread resolves the ticket bound to an administrator thread.
func (r *TicketRouter) TicketForThread(ctx context.Context, threadID int64) (*domain.Ticket, error) {
	ticket, err := r.tickets.FindByThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnknownThread(threadID)
		}
		return nil, apperrors.NewStoreFailure(err)
	}
	return ticket, nil
}

// AppendLog writes one audit entry. The write is best-effort: a failure
// is logged and never blocks the relay that triggered it.
func (r *TicketRouter) AppendLog(ctx context.Context, ticketID int64, direction domain.Direction, payload domain.Payload) {
	entry := &domain.MessageLogEntry{
		TicketID:  ticketID,
		Direction: direction,
		Payload:   payload,
	}
	if err := r.log.Append(ctx, entry); err != nil {
		r.logger.Error("audit log append failed",
			zap.Int64("ticket_id", ticketID),
			zap.String("direction", string(direction)),
			zap.Error(err))
	}
}

func (r *TicketRouter) finishRelay(ctx context.Context, ticket *domain.Ticket, direction domain.Direction, kind domain.PayloadKind, sendErr error, failureReply string) error {
	delivered := sendErr == nil
	r.publish(ctx, events.Event{
		Type:     events.EventMessageRelayed,
		TicketID: ticket.ID,
		Payload: events.MessageRelayedPayload{
			Direction: direction,
			Kind:      kind,
			Delivered: delivered,
		},
	})
	if sendErr != nil {
		r.metrics.RecordDeliveryFailure()
		r.logger.Error("relay delivery failed",
			zap.String("ticket_key", ticket.Key),
			zap.String("direction", string(direction)),
			zap.Error(sendErr))
		return apperrors.NewDeliveryFailure(sendErr, failureReply)
	}
	r.metrics.RecordRelay(string(direction), string(kind))
	return nil
}

func (r *TicketRouter) publish(ctx context.Context, event events.Event) {
	if r.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = r.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "REQ-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
