package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/taskflow/internal/domain"
)

// TaskRepository implements domain.TaskRepository using SQLite.
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new SQLite-backed TaskRepository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, text, completed, priority, category, created_at, updated_at, completed_at`

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	result, err := r.db.SqlDB.ExecContext(ctx,
		`INSERT INTO tasks (user_id, text, completed, priority, category, created_at, updated_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.UserID, task.Text, task.Completed, string(task.Priority), string(task.Category), now, now, task.CompletedAt,
	)
	if err != nil {
		return storeError(ctx, "insert task", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get task id: %w", err)
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var t domain.Task
	err := scanTask(r.db.SqlDB.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id), &t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeError(ctx, "get task", err)
	}
	return &t, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Task, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.SqlDB.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, storeError(ctx, "list tasks", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, storeError(ctx, "scan task", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(ctx, "iterate tasks", err)
	}
	return tasks, nil
}

func (r *TaskRepository) UpdateScored(ctx context.Context, task *domain.Task, wasCompleted bool, delta domain.ScoreDelta) (domain.Aggregate, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.SqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Aggregate{}, storeError(ctx, "begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE tasks SET
		 text = ?, completed = ?, priority = ?, category = ?, completed_at = ?, updated_at = ?
		 WHERE id = ? AND user_id = ? AND completed = ?`,
		task.Text, task.Completed, string(task.Priority), string(task.Category), task.CompletedAt, now,
		task.ID, task.UserID, wasCompleted,
	)
	if err != nil {
		return domain.Aggregate{}, storeError(ctx, "update task", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return domain.Aggregate{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM tasks WHERE id = ? AND user_id = ?`, task.ID, task.UserID,
		).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Aggregate{}, domain.ErrNotFound
		}
		if err != nil {
			return domain.Aggregate{}, storeError(ctx, "check task", err)
		}
		return domain.Aggregate{}, domain.ErrConflict
	}

	agg, err := applyScore(ctx, tx, task.UserID, delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Aggregate{}, domain.ErrNotFound
		}
		return domain.Aggregate{}, storeError(ctx, "apply score", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Aggregate{}, storeError(ctx, "commit", err)
	}

	task.UpdatedAt = now
	return agg, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	result, err := r.db.SqlDB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return storeError(ctx, "delete task", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTask(row rowScanner, t *domain.Task) error {
	var priority, category string
	if err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &priority, &category,
		&t.CreatedAt, &t.UpdatedAt, &t.CompletedAt); err != nil {
		return err
	}
	t.Priority = domain.Priority(priority)
	t.Category = domain.Category(category)
	return nil
}
