package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-relay/internal/domain"
	"github.com/spec-kit/support-relay/internal/events"
	"github.com/spec-kit/support-relay/internal/repository"
	apperrors "github.com/spec-kit/support-relay/pkg/util"
)

// RoleService resolves sender identities against the administrator
// allow-list.
type RoleService struct {
	admins     repository.AdminRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewRoleService constructs the service.
func NewRoleService(admins repository.AdminRepository, dispatcher events.Dispatcher, logger *zap.Logger) *RoleService {
	return &RoleService{admins: admins, dispatcher: dispatcher, logger: logger}
}

// IsAdmin reports allow-list membership. A store failure is treated as
// non-admin: a storage hiccup must never grant admin-side routing.
func (s *RoleService) IsAdmin(ctx context.Context, id int64) bool {
	exists, err := s.admins.Exists(ctx, id)
	if err != nil {
		s.logger.Error("admin lookup failed, treating as non-admin",
			zap.Int64("id", id), zap.Error(err))
		return false
	}
	return exists
}

// Resolve attaches a role tag to an identity at the point of dispatch.
func (s *RoleService) Resolve(ctx context.Context, ident domain.Identity) domain.Role {
	if s.IsAdmin(ctx, ident.ID) {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// AddAdmin inserts a new administrator. Only existing administrators may
// call it; duplicate inserts are a no-op.
func (s *RoleService) AddAdmin(ctx context.Context, actorID, newAdminID int64) error {
	if !s.IsAdmin(ctx, actorID) {
		return apperrors.NewAccessDenied()
	}
	if err := s.admins.Add(ctx, newAdminID); err != nil {
		return apperrors.NewStoreFailure(err)
	}
	s.publish(ctx, events.Event{
		Type: events.EventAdminAdded,
		Payload: events.AdminAddedPayload{
			AdminID: newAdminID,
			AddedBy: actorID,
		},
	})
	return nil
}

// Bootstrap seeds the initial administrator from configuration. A zero id
// skips seeding.
func (s *RoleService) Bootstrap(ctx context.Context, adminID int64) error {
	if adminID == 0 {
		return nil
	}
	if err := s.admins.Add(ctx, adminID); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin seeded", zap.Int64("admin_id", adminID))
	return nil
}

func (s *RoleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
