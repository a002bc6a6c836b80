package handler

import (
	"time"

	"github.com/msomdec/taskflow/internal/domain"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TotalPoints int    `json:"totalPoints"`
	StreakCount int    `json:"streakCount"`
	CreatedAt   string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Name:        u.DisplayName,
		Email:       u.Email,
		TotalPoints: u.TotalPoints,
		StreakCount: u.StreakCount,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

// AggregateDTO is the score summary returned after a task update.
type AggregateDTO struct {
	TotalPoints int `json:"totalPoints"`
	StreakCount int `json:"streakCount"`
}

func toAggregateDTO(a domain.Aggregate) AggregateDTO {
	return AggregateDTO{TotalPoints: a.TotalPoints, StreakCount: a.StreakCount}
}

// TaskDTO is the JSON representation of a task.
type TaskDTO struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"userId"`
	Text        string  `json:"text"`
	Completed   bool    `json:"completed"`
	Priority    string  `json:"priority"`
	Category    string  `json:"category"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	CompletedAt *string `json:"completedAt"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	dto := TaskDTO{
		ID:        t.ID,
		UserID:    t.UserID,
		Text:      t.Text,
		Completed: t.Completed,
		Priority:  string(t.Priority),
		Category:  string(t.Category),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		s := t.CompletedAt.Format(time.RFC3339)
		dto.CompletedAt = &s
	}
	return dto
}

func toTaskDTOs(tasks []domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = toTaskDTO(&tasks[i])
	}
	return dtos
}

// StatsDTO is the JSON representation of a user's task statistics.
type StatsDTO struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Completed    int `json:"completed"`
	HighPriority int `json:"highPriority"`
}

func toStatsDTO(s domain.TaskStats) StatsDTO {
	return StatsDTO{
		Total:        s.Total,
		Active:       s.Active,
		Completed:    s.Completed,
		HighPriority: s.HighPriorityActive,
	}
}
