package store

import (
	"context"
	"errors"
	"testing"

	"saleshub-system/internal/permissions"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	created, err := users.Register(ctx, "dana", "dana@example.com", "s3cret", "Dana Reyes")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if created.Password == "s3cret" {
		t.Fatal("password must be stored hashed")
	}
	if created.IsAdmin {
		t.Fatal("new accounts must not be admins")
	}
	if len(created.Permissions) != 0 {
		t.Fatalf("new accounts start with no permissions, got %v", created.Permissions)
	}

	if _, err := users.Register(ctx, "dana", "other@example.com", "x", ""); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	authed, err := users.Authenticate(ctx, "dana", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if authed.ID != created.ID {
		t.Fatalf("authenticated wrong account: %d", authed.ID)
	}
	if authed.LastLogin == nil {
		t.Fatal("expected last login to be stamped")
	}

	if _, err := users.Authenticate(ctx, "dana", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := users.Authenticate(ctx, "nobody", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestBlockedAccountCannotAuthenticate(t *testing.T) {
	db := newTestDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	created, err := users.Register(ctx, "dana", "dana@example.com", "s3cret", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	blocked := true
	if _, err := users.UpdateAccess(ctx, created.ID, nil, nil, &blocked); err != nil {
		t.Fatalf("UpdateAccess failed: %v", err)
	}

	if _, err := users.Authenticate(ctx, "dana", "s3cret"); !errors.Is(err, ErrUserBlocked) {
		t.Fatalf("expected ErrUserBlocked, got %v", err)
	}
}

func TestUpdateAccessGrantsPermissions(t *testing.T) {
	db := newTestDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	created, err := users.Register(ctx, "dana", "dana@example.com", "s3cret", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	perms := permissions.Set{permissions.ViewSales, permissions.EditSales}
	updated, err := users.UpdateAccess(ctx, created.ID, &perms, nil, nil)
	if err != nil {
		t.Fatalf("UpdateAccess failed: %v", err)
	}
	if !updated.Permissions.Has(permissions.EditSales) {
		t.Fatalf("expected EditSales granted, got %v", updated.Permissions)
	}

	// Round-trip through the database column.
	reloaded, err := users.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !reloaded.Permissions.Has(permissions.ViewSales) || reloaded.Permissions.Has(permissions.ManageUsers) {
		t.Fatalf("permissions did not survive storage: %v", reloaded.Permissions)
	}
}
