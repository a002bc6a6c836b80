package domain

import (
	"context"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryWork, CategoryShopping, CategoryHealth:
		return true
	}
	return false
}

// Task is a single to-do item owned by one user.
type Task struct {
	ID          int64
	UserID      int64
	Text        string
	Completed   bool
	Priority    Priority
	Category    Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time // non-nil iff Completed
}

// TaskPatch carries the optional fields of an update request. Nil means
// "leave unchanged".
type TaskPatch struct {
	Text      *string
	Completed *bool
	Priority  *Priority
	Category  *Category
}

// TaskStats is derived from a user's current task set.
type TaskStats struct {
	Total              int
	Active             int
	Completed          int
	HighPriorityActive int
}

type TransitionKind string

const (
	TransitionNone      TransitionKind = "none"
	TransitionCompleted TransitionKind = "completed"
	TransitionReopened  TransitionKind = "reopened"
)

// ScoreDelta is the change to a user's aggregate caused by one task
// completion transition.
type ScoreDelta struct {
	Kind   TransitionKind
	Points int
	Streak int
}

// IsZero reports whether applying d would change nothing.
func (d ScoreDelta) IsZero() bool {
	return d.Points == 0 && d.Streak == 0
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	// ListByUser returns the user's tasks, newest first.
	ListByUser(ctx context.Context, userID int64) ([]Task, error)
	// UpdateScored writes task and applies delta to the owner's aggregate in
	// one transaction. The write only happens if the stored completed flag
	// still equals wasCompleted; otherwise ErrConflict is returned and
	// nothing changes.
	UpdateScored(ctx context.Context, task *Task, wasCompleted bool, delta ScoreDelta) (Aggregate, error)
	Delete(ctx context.Context, id int64) error
}
