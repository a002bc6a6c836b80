package service

import (
	"time"

	"github.com/msomdec/taskflow/internal/domain"
)

// PointsFor returns how many points completing a task of priority p is worth.
func PointsFor(p domain.Priority) int {
	switch p {
	case domain.PriorityHigh:
		return 15
	case domain.PriorityMedium:
		return 10
	default:
		return 5
	}
}

// EvaluateTransition returns the score change caused by setting the task's
// completed flag to *requested. A nil or unchanged request scores nothing.
// Points come from the task's current priority.
func EvaluateTransition(task *domain.Task, requested *bool) domain.ScoreDelta {
	if requested == nil || *requested == task.Completed {
		return domain.ScoreDelta{Kind: domain.TransitionNone}
	}

	points := PointsFor(task.Priority)
	if *requested {
		return domain.ScoreDelta{Kind: domain.TransitionCompleted, Points: points, Streak: 1}
	}
	return domain.ScoreDelta{Kind: domain.TransitionReopened, Points: -points, Streak: -1}
}

// PlanUpdate computes the task that results from applying patch to current,
// and the score delta that goes with it. The delta is fixed before any field
// is edited, so a request that changes priority and completion together is
// scored at the priority the task had when it was sent.
func PlanUpdate(current domain.Task, patch domain.TaskPatch, now time.Time) (domain.Task, domain.ScoreDelta) {
	delta := EvaluateTransition(&current, patch.Completed)

	next := current
	switch delta.Kind {
	case domain.TransitionCompleted:
		at := now.UTC()
		next.Completed = true
		next.CompletedAt = &at
	case domain.TransitionReopened:
		next.Completed = false
		next.CompletedAt = nil
	}

	if patch.Text != nil {
		next.Text = *patch.Text
	}
	if patch.Priority != nil {
		next.Priority = *patch.Priority
	}
	if patch.Category != nil {
		next.Category = *patch.Category
	}
	return next, delta
}
