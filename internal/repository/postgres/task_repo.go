package postgres

import (
	"context"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	return translate(
		r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error,
		domain.ErrTaskNotFound,
	)
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrTaskNotFound)
	}
	return &task, nil
}

func (r *taskRepository) GetDetail(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("notes.created_at")
		}).
		Preload("Notes.Author").
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrTaskNotFound)
	}
	return &task, nil
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) NextPosition(ctx context.Context, projectID uuid.UUID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Select("COALESCE(MAX(position), -1) + 1").
		Where("project_id = ?", projectID).
		Scan(&next).Error
	return next, err
}

// GetByIDForUpdate loads the task and locks its row until the surrounding
// transaction ends.
func (r *taskRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrTaskNotFound)
	}
	return &task, nil
}

// Update writes name and description only.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	return updateColumns(r.db.WithContext(ctx), task, task.ID, domain.ErrTaskNotFound,
		"name", "description", "updated_at")
}

// UpdateStatus writes the status and its history.
func (r *taskRepository) UpdateStatus(ctx context.Context, task *domain.Task) error {
	return updateColumns(r.db.WithContext(ctx), task, task.ID, domain.ErrTaskNotFound,
		"status", "completed_by", "updated_at")
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&domain.Task{}).Error
}
