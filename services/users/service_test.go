package users_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"daybook/internal/database"
	"daybook/models"
	"daybook/services/users"
)

func setup(t *testing.T) (*sql.DB, *users.Service) {
	t.Helper()

	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(t.TempDir(), "daybook.db"),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db.Connection(), users.NewService(db.Connection())
}

func TestRegisterAndAuthenticate(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	userID, err := svc.Register(ctx, "alice", "correct horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if userID == 0 {
		t.Fatalf("expected non-zero user id")
	}

	gotID, err := svc.Authenticate(ctx, "alice", "correct horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if gotID != userID {
		t.Fatalf("authenticate returned id %d, want %d", gotID, userID)
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong password"); !errors.Is(err, users.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "whatever"); !errors.Is(err, users.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "another"); !errors.Is(err, users.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	// Normalization makes case variants collide too.
	if _, err := svc.Register(ctx, "  BOB ", "another"); !errors.Is(err, users.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken for case variant, got %v", err)
	}
}

func TestRegisterCreatesDefaultSettingsRow(t *testing.T) {
	conn, svc := setup(t)
	ctx := context.Background()

	userID, err := svc.Register(ctx, "carol", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var timerLength int
	if err := conn.QueryRow("SELECT timer_length FROM settings WHERE user_id = ?", userID).Scan(&timerLength); err != nil {
		t.Fatalf("settings row missing after register: %v", err)
	}
	if timerLength != models.DefaultTimerLength {
		t.Fatalf("timer length = %d, want default %d", timerLength, models.DefaultTimerLength)
	}
}

func TestRegisterMissingCredentials(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "   ", "secret"); !errors.Is(err, users.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials for blank username, got %v", err)
	}
	if _, err := svc.Register(ctx, "dave", "  "); !errors.Is(err, users.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials for blank password, got %v", err)
	}
}

func TestNormalizeUsername(t *testing.T) {
	cases := map[string]string{
		" Alice ":  "alice",
		"JOSÉ":     "jose",
		"rené":     "rene",
		"plain":    "plain",
		"  Müller": "muller",
	}
	for input, want := range cases {
		if got := users.NormalizeUsername(input); got != want {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestAuthenticateNormalizesUsername(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	userID, err := svc.Register(ctx, "José", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	gotID, err := svc.Authenticate(ctx, "jose", "secret")
	if err != nil {
		t.Fatalf("authenticate normalized: %v", err)
	}
	if gotID != userID {
		t.Fatalf("authenticate returned id %d, want %d", gotID, userID)
	}
}
