package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/taskflow/internal/domain"
)

// maxUpdateAttempts bounds how often Update re-reads a task whose completed
// flag changed underneath it.
const maxUpdateAttempts = 3

// ScoreRecorder observes scoring outcomes. The metrics package provides the
// production implementation.
type ScoreRecorder interface {
	RecordTransition(delta domain.ScoreDelta)
	RecordConflict()
}

type nopRecorder struct{}

func (nopRecorder) RecordTransition(domain.ScoreDelta) {}
func (nopRecorder) RecordConflict()                    {}

// TaskService handles task CRUD scoped to the owning user and applies score
// changes on completion transitions.
type TaskService struct {
	tasks    domain.TaskRepository
	recorder ScoreRecorder
	now      func() time.Time
}

// NewTaskService creates a new TaskService. recorder may be nil.
func NewTaskService(tasks domain.TaskRepository, recorder ScoreRecorder) *TaskService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &TaskService{tasks: tasks, recorder: recorder, now: time.Now}
}

// List returns the user's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID int64) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Create adds a task owned by userID. Empty priority and category take
// their defaults.
func (s *TaskService) Create(ctx context.Context, userID int64, text string, priority domain.Priority, category domain.Category) (*domain.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: task text is required", domain.ErrInvalidInput)
	}
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if category == "" {
		category = domain.CategoryPersonal
	}
	if err := validateEnums(priority, category); err != nil {
		return nil, err
	}

	task := &domain.Task{
		UserID:   userID,
		Text:     text,
		Priority: priority,
		Category: category,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Get returns the task if it exists and belongs to userID. Both a missing
// task and someone else's task yield domain.ErrNotFound.
func (s *TaskService) Get(ctx context.Context, userID, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return task, nil
}

// Update applies patch to the user's task. When the patch flips the
// completed flag, the owner's points and streak change in the same
// transaction as the task write.
func (s *TaskService) Update(ctx context.Context, userID, id int64, patch domain.TaskPatch) (*domain.Task, domain.Aggregate, error) {
	if err := validatePatch(&patch); err != nil {
		return nil, domain.Aggregate{}, err
	}

	for attempt := 1; ; attempt++ {
		current, err := s.Get(ctx, userID, id)
		if err != nil {
			return nil, domain.Aggregate{}, err
		}

		next, delta := PlanUpdate(*current, patch, s.now())
		agg, err := s.tasks.UpdateScored(ctx, &next, current.Completed, delta)
		if err == nil {
			s.recorder.RecordTransition(delta)
			return &next, agg, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, domain.Aggregate{}, fmt.Errorf("update task: %w", err)
		}

		s.recorder.RecordConflict()
		if attempt == maxUpdateAttempts {
			return nil, domain.Aggregate{}, fmt.Errorf("update task after %d attempts: %w: %w", attempt, domain.ErrTransient, err)
		}
	}
}

// Delete removes the user's task. Points already earned by it are kept.
func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}

// Stats counts the user's tasks as they are right now.
func (s *TaskService) Stats(ctx context.Context, userID int64) (domain.TaskStats, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return domain.TaskStats{}, fmt.Errorf("list tasks: %w", err)
	}
	return ComputeStats(tasks), nil
}

// ComputeStats derives totals from a task set.
func ComputeStats(tasks []domain.Task) domain.TaskStats {
	stats := domain.TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
			continue
		}
		stats.Active++
		if t.Priority == domain.PriorityHigh {
			stats.HighPriorityActive++
		}
	}
	return stats
}

func validatePatch(patch *domain.TaskPatch) error {
	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return fmt.Errorf("%w: task text cannot be empty", domain.ErrInvalidInput)
		}
		patch.Text = &text
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return fmt.Errorf("%w: priority must be low, medium, or high", domain.ErrInvalidInput)
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return fmt.Errorf("%w: category must be personal, work, shopping, or health", domain.ErrInvalidInput)
	}
	return nil
}

func validateEnums(p domain.Priority, c domain.Category) error {
	if !p.Valid() {
		return fmt.Errorf("%w: priority must be low, medium, or high", domain.ErrInvalidInput)
	}
	if !c.Valid() {
		return fmt.Errorf("%w: category must be personal, work, shopping, or health", domain.ErrInvalidInput)
	}
	return nil
}
