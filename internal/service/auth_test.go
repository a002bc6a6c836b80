package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/msomdec/taskflow/internal/domain"
	"github.com/msomdec/taskflow/internal/repository/sqlite"
	"github.com/msomdec/taskflow/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *service.TokenService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	tokens := service.NewTokenService(testJWTSecret, 0)
	// Use cost 4 for fast tests.
	return service.NewAuthService(db.Users(), tokens, 4), tokens, db
}

func TestAuthService_Register_Success(t *testing.T) {
	auth, tokens, _ := newTestAuthService(t)
	ctx := context.Background()

	session, err := auth.Register(ctx, "New User", "New@Example.com ", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if session.User.ID == 0 {
		t.Fatal("expected user ID to be set")
	}
	if session.User.Email != "new@example.com" {
		t.Fatalf("expected normalised email new@example.com, got %s", session.User.Email)
	}
	if session.User.PasswordHash == "password123" || session.User.PasswordHash == "" {
		t.Fatal("expected password to be stored hashed")
	}
	if session.User.TotalPoints != 0 || session.User.StreakCount != 0 {
		t.Fatalf("expected zero score, got %d/%d", session.User.TotalPoints, session.User.StreakCount)
	}

	id, err := tokens.Verify(session.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != session.User.ID {
		t.Fatalf("expected token for user %d, got %d", session.User.ID, id.UserID)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	auth, tokens, _ := newTestAuthService(t)
	ctx := context.Background()

	first, err := auth.Register(ctx, "User 1", "dup@example.com", "password123")
	if err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err = auth.Register(ctx, "User 2", "dup@example.com", "password456")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// The first registration's token is unaffected.
	if _, err := tokens.Verify(first.Token); err != nil {
		t.Fatalf("first token should remain valid: %v", err)
	}
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	_, err := auth.Register(context.Background(), "Weak", "weak@example.com", "short")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_Register_InvalidEmail(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	_, err := auth.Register(context.Background(), "Bad", "not-an-email", "password123")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_Register_EmptyFields(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		display  string
		email    string
		password string
	}{
		{"empty email", "Name", "", "password123"},
		{"empty display name", "  ", "a@b.com", "password123"},
		{"empty password", "Name", "a@b.com", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tc.display, tc.email, tc.password)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	auth, tokens, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := auth.Register(ctx, "Login User", "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	session, err := auth.Login(ctx, "LOGIN@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if session.User.ID != registered.User.ID {
		t.Fatalf("expected user %d, got %d", registered.User.ID, session.User.ID)
	}

	id, err := tokens.Verify(session.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.Email != "login@example.com" || id.DisplayName != "Login User" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "User", "wrongpw@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := auth.Login(ctx, "wrongpw@example.com", "wrongpassword")
	if !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	_, err := auth.Login(context.Background(), "nobody@example.com", "password123")
	if !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	session, err := auth.Register(ctx, "Profile", "profile@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := auth.GetUserByID(ctx, session.User.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if user.DisplayName != "Profile" {
		t.Fatalf("expected display name Profile, got %q", user.DisplayName)
	}
}
