package bot

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/support-relay/internal/domain"
	"github.com/spec-kit/support-relay/internal/observability"
	"github.com/spec-kit/support-relay/internal/service"
	"github.com/spec-kit/support-relay/internal/transport"
	apperrors "github.com/spec-kit/support-relay/pkg/util"
)

// Facade is the single entry point for inbound events: it classifies
// each event (admin vs. user side, text vs. photo, grouped vs. single)
// and dispatches to the router or the coalescer. It also owns the
// first-contact intake state machine. Handle performs no serialization
// of its own; the Dispatcher feeding it keeps each conversation's
// events in order.
type Facade struct {
	router       *service.TicketRouter
	coalescer    *service.MediaBatchCoalescer
	roles        *service.RoleService
	sessions     SessionStore
	transport    transport.Transport
	metrics      *observability.RelayMetrics
	logger       *zap.Logger
	reviewPhotos []domain.PhotoRef
}

// FacadeDependencies bundles collaborators for the façade.
type FacadeDependencies struct {
	Router       *service.TicketRouter
	Coalescer    *service.MediaBatchCoalescer
	Roles        *service.RoleService
	Sessions     SessionStore
	Transport    transport.Transport
	Metrics      *observability.RelayMetrics
	Logger       *zap.Logger
	ReviewPhotos []string
}

// NewFacade constructs the façade.
func NewFacade(deps FacadeDependencies) *Facade {
	reviews := make([]domain.PhotoRef, len(deps.ReviewPhotos))
	for i, ref := range deps.ReviewPhotos {
		reviews[i] = domain.PhotoRef(ref)
	}
	return &Facade{
		router:       deps.Router,
		coalescer:    deps.Coalescer,
		roles:        deps.Roles,
		sessions:     deps.Sessions,
		transport:    deps.Transport,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		reviewPhotos: reviews,
	}
}

// Handle processes one inbound event to completion. Failures are scoped
// to this event; nothing here panics across tickets.
func (f *Facade) Handle(ctx context.Context, ev Event) {
	switch {
	case ev.Command == "start":
		f.handleStart(ctx, ev)
	case ev.Command == "addadmin":
		f.handleAddAdmin(ctx, ev)
	case ev.ChatID == f.router.Workspace():
		f.handleAdminSide(ctx, ev)
	default:
		f.handleUserSide(ctx, ev)
	}
}

func (f *Facade) handleStart(ctx context.Context, ev Event) {
	if ev.ChatID == f.router.Workspace() {
		return
	}
	dest := transport.UserDestination(ev.ChatID)
	f.send(ctx, dest, greetingText)
	f.send(ctx, dest, intakePromptText)
	if err := f.sessions.Set(ctx, ev.Sender.ID, StateAwaitingAccountInfo); err != nil {
		f.logger.Error("session set failed", zap.Int64("user_id", ev.Sender.ID), zap.Error(err))
	}
}

func (f *Facade) handleAddAdmin(ctx context.Context, ev Event) {
	dest := f.replyDestination(ev)
	if len(ev.Args) == 0 {
		f.send(ctx, dest, addAdminUsageText)
		return
	}
	newAdminID, err := strconv.ParseInt(ev.Args[0], 10, 64)
	if err != nil {
		f.send(ctx, dest, addAdminInvalidText)
		return
	}
	if err := f.roles.AddAdmin(ctx, ev.Sender.ID, newAdminID); err != nil {
		if reply := apperrors.UserReply(err); reply != "" {
			f.send(ctx, dest, reply)
		}
		return
	}
	f.send(ctx, dest, fmt.Sprintf(addAdminSuccessText, newAdminID))
	f.send(ctx, transport.UserDestination(newAdminID), addAdminWelcomeText)
}

// handleAdminSide routes messages inside the administrator workspace.
func (f *Facade) handleAdminSide(ctx context.Context, ev Event) {
	if ev.ThreadID == 0 {
		// Workspace chatter outside any ticket thread.
		f.metrics.RecordDrop("workspace_general")
		return
	}

	if ev.GroupKey != "" && ev.Photo != "" {
		f.adminMediaGroup(ctx, ev)
		return
	}

	var payload domain.Payload
	switch {
	case ev.Photo != "":
		payload = domain.PhotoPayload(ev.Photo, ev.Caption)
	case ev.Text != "":
		payload = domain.TextPayload(ev.Text)
	default:
		f.metrics.RecordDrop("unsupported_content")
		return
	}

	err := f.router.RelayFromAdmin(ctx, ev.ThreadID, ev.Sender, payload)
	f.reportAdminResult(ctx, ev, err)
}

func (f *Facade) adminMediaGroup(ctx context.Context, ev Event) {
	ticket, err := f.router.TicketForThread(ctx, ev.ThreadID)
	if err != nil {
		f.reportAdminResult(ctx, ev, err)
		return
	}
	if !f.roles.IsAdmin(ctx, ev.Sender.ID) {
		f.send(ctx, f.replyDestination(ev), accessDeniedText)
		return
	}

	// Per-item audit write at arrival time, independent of flush outcome.
	f.router.AppendLog(ctx, ticket.ID, domain.DirectionFromAdmin, domain.PhotoPayload(ev.Photo, ev.Caption))
	f.coalescer.Add(ev.GroupKey, service.BatchInput{
		TicketID:    ticket.ID,
		Origin:      domain.RoleAdmin,
		Destination: transport.UserDestination(ticket.UserID),
		Photo:       ev.Photo,
		Caption:     ev.Caption,
	})
}

func (f *Facade) reportAdminResult(ctx context.Context, ev Event, err error) {
	switch {
	case err == nil:
		return
	case apperrors.HasCode(err, apperrors.CodeUnknownThread):
		// Housekeeping threads legitimately have no ticket.
		f.metrics.RecordDrop("unknown_thread")
	case apperrors.HasCode(err, apperrors.CodeAccessDenied):
		f.send(ctx, f.replyDestination(ev), accessDeniedText)
	default:
		f.logger.Error("admin relay failed",
			zap.Int64("thread_id", ev.ThreadID), zap.Error(err))
	}
}

// handleUserSide routes direct messages from end users.
func (f *Facade) handleUserSide(ctx context.Context, ev Event) {
	if f.roles.IsAdmin(ctx, ev.Sender.ID) {
		f.metrics.RecordDrop("admin_direct_message")
		return
	}

	if ev.Text == reviewsButtonText {
		f.handleReviews(ctx, ev)
		return
	}

	if state, ok := f.sessionState(ctx, ev.Sender.ID); ok && state == StateAwaitingAccountInfo {
		f.handleIntake(ctx, ev)
		return
	}

	dest := transport.UserDestination(ev.ChatID)
	if ev.GroupKey != "" && ev.Photo != "" {
		f.userMediaGroup(ctx, ev)
		return
	}

	var payload domain.Payload
	switch {
	case ev.Photo != "":
		payload = domain.PhotoPayload(ev.Photo, ev.Caption)
	case ev.Text != "":
		payload = domain.TextPayload(ev.Text)
	default:
		f.metrics.RecordDrop("unsupported_content")
		return
	}

	if err := f.router.RelayFromUser(ctx, ev.Sender, payload); err != nil {
		if reply := apperrors.UserReply(err); reply != "" {
			f.send(ctx, dest, reply)
		}
	}
}

func (f *Facade) userMediaGroup(ctx context.Context, ev Event) {
	ticket, err := f.router.ActiveTicketFor(ctx, ev.Sender.ID)
	if err != nil {
		if reply := apperrors.UserReply(err); reply != "" {
			f.send(ctx, transport.UserDestination(ev.ChatID), reply)
		}
		return
	}

	f.router.AppendLog(ctx, ticket.ID, domain.DirectionFromUser, domain.PhotoPayload(ev.Photo, ev.Caption))
	f.coalescer.Add(ev.GroupKey, service.BatchInput{
		TicketID:    ticket.ID,
		Origin:      domain.RoleUser,
		Destination: transport.ThreadDestination(*ticket.WorkspaceID, *ticket.ThreadID),
		Photo:       ev.Photo,
		Caption:     ev.Caption,
	})
}

// handleIntake advances the first-contact state machine. Only text or a
// single photo is accepted as intake; anything else repeats the
// instructions and leaves the state unchanged.
func (f *Facade) handleIntake(ctx context.Context, ev Event) {
	dest := transport.UserDestination(ev.ChatID)

	var payload domain.Payload
	switch {
	case ev.GroupKey != "":
		f.send(ctx, dest, intakeRepeatText)
		return
	case ev.Photo != "":
		payload = domain.PhotoPayload(ev.Photo, ev.Caption)
	case ev.Text != "":
		payload = domain.TextPayload(ev.Text)
	default:
		f.send(ctx, dest, intakeRepeatText)
		return
	}

	ticket, err := f.router.Intake(ctx, ev.Sender, payload)
	if ticket == nil {
		if reply := apperrors.UserReply(err); reply != "" {
			f.send(ctx, dest, reply)
		}
		f.clearSession(ctx, ev.Sender.ID)
		return
	}
	if err != nil {
		// Degraded: ticket exists but could not be routed yet. The
		// acknowledgment is still sent.
		f.logger.Warn("intake not routed",
			zap.String("ticket_key", ticket.Key), zap.Error(err))
	}
	f.send(ctx, dest, intakeAckText)
	f.clearSession(ctx, ev.Sender.ID)
}

func (f *Facade) handleReviews(ctx context.Context, ev Event) {
	dest := transport.UserDestination(ev.ChatID)
	if len(f.reviewPhotos) == 0 {
		f.send(ctx, dest, reviewsEmptyText)
		return
	}
	items := make([]transport.BatchItem, len(f.reviewPhotos))
	for i, photo := range f.reviewPhotos {
		items[i] = transport.BatchItem{Photo: photo}
	}
	items[0].Caption = reviewsCaptionText
	if err := f.transport.SendPhotoBatch(ctx, dest, items); err != nil {
		f.logger.Error("reviews delivery failed", zap.Error(err))
	}
}

func (f *Facade) sessionState(ctx context.Context, userID int64) (State, bool) {
	state, ok, err := f.sessions.Get(ctx, userID)
	if err != nil {
		// Treat an unreadable session as already relaying; the user can
		// re-run /start if their intake was genuinely pending.
		f.logger.Error("session lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return "", false
	}
	return state, ok
}

func (f *Facade) clearSession(ctx context.Context, userID int64) {
	if err := f.sessions.Clear(ctx, userID); err != nil {
		f.logger.Error("session clear failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (f *Facade) replyDestination(ev Event) transport.Destination {
	if ev.ChatID == f.router.Workspace() && ev.ThreadID != 0 {
		return transport.ThreadDestination(ev.ChatID, ev.ThreadID)
	}
	return transport.UserDestination(ev.ChatID)
}

func (f *Facade) send(ctx context.Context, dest transport.Destination, text string) {
	if err := f.transport.SendText(ctx, dest, text); err != nil {
		f.logger.Error("reply delivery failed",
			zap.Int64("chat_id", dest.ChatID), zap.Error(err))
	}
}
