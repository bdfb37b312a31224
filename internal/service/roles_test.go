package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/spec-kit/support-relay/pkg/util"
)

func TestIsAdminFailsClosed(t *testing.T) {
	t.Parallel()
	admins := newFakeAdminRepo(500)
	roles := NewRoleService(admins, nil, zap.NewNop())
	ctx := context.Background()

	if !roles.IsAdmin(ctx, 500) {
		t.Error("IsAdmin(500) = false, want true")
	}
	if roles.IsAdmin(ctx, 42) {
		t.Error("IsAdmin(42) = true, want false")
	}

	admins.existsErr = errors.New("pg: timeout")
	if roles.IsAdmin(ctx, 500) {
		t.Error("IsAdmin returned true while the lookup was failing")
	}
}

func TestAddAdmin(t *testing.T) {
	t.Parallel()
	admins := newFakeAdminRepo(500)
	roles := NewRoleService(admins, nil, zap.NewNop())
	ctx := context.Background()

	t.Run("non-admin actor is rejected", func(t *testing.T) {
		err := roles.AddAdmin(ctx, 42, 43)
		if !apperrors.HasCode(err, apperrors.CodeAccessDenied) {
			t.Errorf("error = %v, want code %s", err, apperrors.CodeAccessDenied)
		}
		if roles.IsAdmin(ctx, 43) {
			t.Error("rejected add still granted admin")
		}
	})

	t.Run("admin actor grants access", func(t *testing.T) {
		if err := roles.AddAdmin(ctx, 500, 501); err != nil {
			t.Fatalf("AddAdmin() error = %v", err)
		}
		if !roles.IsAdmin(ctx, 501) {
			t.Error("IsAdmin(501) = false after AddAdmin")
		}
	})

	t.Run("duplicate add is a no-op", func(t *testing.T) {
		if err := roles.AddAdmin(ctx, 500, 501); err != nil {
			t.Errorf("duplicate AddAdmin() error = %v", err)
		}
	})
}

func TestBootstrap(t *testing.T) {
	t.Parallel()
	admins := newFakeAdminRepo()
	roles := NewRoleService(admins, nil, zap.NewNop())
	ctx := context.Background()

	if err := roles.Bootstrap(ctx, 0); err != nil {
		t.Errorf("Bootstrap(0) error = %v", err)
	}
	if len(admins.admins) != 0 {
		t.Error("Bootstrap(0) seeded an admin")
	}

	if err := roles.Bootstrap(ctx, 500); err != nil {
		t.Fatalf("Bootstrap(500) error = %v", err)
	}
	if !roles.IsAdmin(ctx, 500) {
		t.Error("IsAdmin(500) = false after bootstrap")
	}
}
