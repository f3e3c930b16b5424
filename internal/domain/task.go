package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TaskStatus string

const (
	TaskStatusPending     TaskStatus = "pending"
	TaskStatusOnHold      TaskStatus = "on-hold"
	TaskStatusInProgress  TaskStatus = "in-progress"
	TaskStatusUnderReview TaskStatus = "under-review"
	TaskStatusCompleted   TaskStatus = "completed"
)

var AllTaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusOnHold,
	TaskStatusInProgress,
	TaskStatusUnderReview,
	TaskStatusCompleted,
}

// ParseTaskStatus validates a status string.
func ParseTaskStatus(s string) (TaskStatus, error) {
	for _, st := range AllTaskStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", Validationf("invalid status %q", s)
}

// StatusChange is one entry of a task's status history.
type StatusChange struct {
	UserID    uuid.UUID  `json:"user"`
	Status    TaskStatus `json:"status"`
	ChangedAt time.Time  `json:"changedAt"`
}

type Task struct {
	ID          uuid.UUID                         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProjectID   uuid.UUID                         `json:"project" gorm:"type:uuid;not null;index"`
	Name        string                            `json:"name" gorm:"not null"`
	Description string                            `json:"description" gorm:"not null"`
	Status      TaskStatus                        `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	Position    int                               `json:"position" gorm:"not null;default:0"`
	CompletedBy datatypes.JSONSlice[StatusChange] `json:"completedBy" gorm:"type:jsonb"`
	CreatedAt   time.Time                         `json:"createdAt"`
	UpdatedAt   time.Time                         `json:"updatedAt"`

	// Relations
	Notes []Note `json:"notes,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// RecordStatus sets the status and appends it to the history.
func (t *Task) RecordStatus(userID uuid.UUID, status TaskStatus, at time.Time) {
	t.Status = status
	t.CompletedBy = append(t.CompletedBy, StatusChange{
		UserID:    userID,
		Status:    status,
		ChangedAt: at,
	})
}
