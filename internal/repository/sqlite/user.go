package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/taskflow/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, display_name, password_hash, total_points, streak_count, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	result, err := r.db.SqlDB.ExecContext(ctx,
		`INSERT INTO users (email, display_name, password_hash, total_points, streak_count, created_at, updated_at)
		 VALUES (?, ?, ?, 0, 0, ?, ?)`,
		user.Email, user.DisplayName, user.PasswordHash, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateEmail
		}
		return storeError(ctx, "insert user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	user.ID = id
	user.TotalPoints = 0
	user.StreakCount = 0
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.db.SqlDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError(ctx, "query user by id", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.db.SqlDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError(ctx, "query user by email", err)
	}
	return user, nil
}

func (r *UserRepository) ApplyScore(ctx context.Context, userID int64, delta domain.ScoreDelta) (domain.Aggregate, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	agg, err := applyScore(ctx, r.db.SqlDB, userID, delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Aggregate{}, domain.ErrNotFound
		}
		return domain.Aggregate{}, storeError(ctx, "apply score", err)
	}
	return agg, nil
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// applyScore increments the counters in one statement so concurrent
// completions for the same user cannot lose each other's updates. A zero
// delta only reads the current values.
func applyScore(ctx context.Context, q rowQueryer, userID int64, delta domain.ScoreDelta) (domain.Aggregate, error) {
	var agg domain.Aggregate
	if delta.IsZero() {
		err := q.QueryRowContext(ctx,
			`SELECT total_points, streak_count FROM users WHERE id = ?`, userID,
		).Scan(&agg.TotalPoints, &agg.StreakCount)
		return agg, err
	}

	err := q.QueryRowContext(ctx,
		`UPDATE users SET
		 total_points = MAX(0, total_points + ?),
		 streak_count = MAX(0, streak_count + ?),
		 updated_at = ?
		 WHERE id = ?
		 RETURNING total_points, streak_count`,
		delta.Points, delta.Streak, time.Now().UTC(), userID,
	).Scan(&agg.TotalPoints, &agg.StreakCount)
	return agg, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash,
		&user.TotalPoints, &user.StreakCount, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}
