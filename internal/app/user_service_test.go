package app_test

import (
	"context"
	"errors"
	"testing"

	"quiz-assignment-service/internal/app"
	"quiz-assignment-service/internal/domain"
)

func TestRegisterLoginAuthenticate(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	id, err := f.users.Register(ctx, app.RegisterForm{Username: "alice", Password: "hunter2"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.users.Register(ctx, app.RegisterForm{Username: "alice", Password: "x"}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := f.users.Register(ctx, app.RegisterForm{Username: "", Password: "x"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if _, _, err := f.users.Login(ctx, "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := f.users.Login(ctx, "nobody", "hunter2"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	token, isAdmin, err := f.users.Login(ctx, "alice", "hunter2")
	if err != nil || isAdmin {
		t.Fatalf("login: admin=%v err=%v", isAdmin, err)
	}
	user, err := f.users.Authenticate(ctx, token)
	if err != nil || user.ID != id {
		t.Fatalf("authenticate: %+v err=%v", user, err)
	}
	if _, err := f.users.Authenticate(ctx, "not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPromote(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	id, err := f.users.Register(ctx, app.RegisterForm{Username: "carol", Password: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := f.users.Promote(ctx, id, "nope"); !errors.Is(err, domain.ErrInvalidAdminCode) {
		t.Fatalf("expected ErrInvalidAdminCode, got %v", err)
	}
	if err := f.users.Promote(ctx, id, "code"); err != nil {
		t.Fatalf("promote: %v", err)
	}

	// admin status is read fresh on every login
	_, isAdmin, err := f.users.Login(ctx, "carol", "pw")
	if err != nil || !isAdmin {
		t.Fatalf("expected admin after promotion, admin=%v err=%v", isAdmin, err)
	}
}
