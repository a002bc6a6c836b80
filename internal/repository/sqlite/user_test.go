package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/taskflow/internal/domain"
	"github.com/msomdec/taskflow/internal/repository/sqlite"
)

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		Email:        "test@example.com",
		DisplayName:  "Test User",
		PasswordHash: "hashedpw",
	}

	err := repo.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == 0 {
		t.Fatal("expected user ID to be set after create")
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
	if user.TotalPoints != 0 || user.StreakCount != 0 {
		t.Fatalf("expected zeroed score, got points=%d streak=%d", user.TotalPoints, user.StreakCount)
	}
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	user1 := &domain.User{
		Email:        "dup@example.com",
		DisplayName:  "User 1",
		PasswordHash: "hash1",
	}
	if err := repo.Create(ctx, user1); err != nil {
		t.Fatalf("Create user1: %v", err)
	}

	user2 := &domain.User{
		Email:        "dup@example.com",
		DisplayName:  "User 2",
		PasswordHash: "hash2",
	}
	err := repo.Create(ctx, user2)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		Email:        "byid@example.com",
		DisplayName:  "By ID",
		PasswordHash: "hash",
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if found.Email != user.Email {
		t.Fatalf("expected email %q, got %q", user.Email, found.Email)
	}
	if found.DisplayName != user.DisplayName {
		t.Fatalf("expected display name %q, got %q", user.DisplayName, found.DisplayName)
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 99999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		Email:        "byemail@example.com",
		DisplayName:  "By Email",
		PasswordHash: "hash",
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.GetByEmail(ctx, "byemail@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}

	if found.ID != user.ID {
		t.Fatalf("expected id %d, got %d", user.ID, found.ID)
	}
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "nonexistent@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func createUser(t *testing.T, db *sqlite.DB, email string) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, DisplayName: email, PasswordHash: "hash"}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return user
}

func TestUserRepository_ApplyScore_Clamps(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "clamp@example.com")

	agg, err := repo.ApplyScore(ctx, user.ID, domain.ScoreDelta{Points: 5, Streak: 1})
	if err != nil {
		t.Fatalf("ApplyScore award: %v", err)
	}
	if agg.TotalPoints != 5 || agg.StreakCount != 1 {
		t.Fatalf("expected 5/1, got %d/%d", agg.TotalPoints, agg.StreakCount)
	}

	agg, err = repo.ApplyScore(ctx, user.ID, domain.ScoreDelta{Points: -15, Streak: -1})
	if err != nil {
		t.Fatalf("ApplyScore withdraw: %v", err)
	}
	if agg.TotalPoints != 0 || agg.StreakCount != 0 {
		t.Fatalf("expected clamp to 0/0, got %d/%d", agg.TotalPoints, agg.StreakCount)
	}

	agg, err = repo.ApplyScore(ctx, user.ID, domain.ScoreDelta{Points: -10, Streak: -1})
	if err != nil {
		t.Fatalf("ApplyScore withdraw at zero: %v", err)
	}
	if agg.TotalPoints != 0 || agg.StreakCount != 0 {
		t.Fatalf("expected to stay at 0/0, got %d/%d", agg.TotalPoints, agg.StreakCount)
	}

	found, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.TotalPoints != 0 || found.StreakCount != 0 {
		t.Fatalf("persisted score drifted: %d/%d", found.TotalPoints, found.StreakCount)
	}
}

func TestUserRepository_ApplyScore_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)

	_, err := repo.ApplyScore(context.Background(), 4242, domain.ScoreDelta{Points: 10, Streak: 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
