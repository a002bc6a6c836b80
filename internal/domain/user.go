package domain

import (
	"context"
	"time"
)

// User represents a registered user of the application.
type User struct {
	ID           int64
	Email        string
	DisplayName  string
	PasswordHash string
	TotalPoints  int
	StreakCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Aggregate returns the user's current score counters.
func (u *User) Aggregate() Aggregate {
	return Aggregate{TotalPoints: u.TotalPoints, StreakCount: u.StreakCount}
}

// Aggregate is the points/streak pair kept on a user.
type Aggregate struct {
	TotalPoints int
	StreakCount int
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ApplyScore adds delta to the user's counters in a single atomic
	// statement, clamping both at zero, and returns the resulting values.
	ApplyScore(ctx context.Context, userID int64, delta ScoreDelta) (Aggregate, error)
}
