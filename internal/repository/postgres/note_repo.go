package postgres

import (
	"context"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *noteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	return translate(
		r.db.WithContext(ctx).Omit(clause.Associations).Create(note).Error,
		domain.ErrNoteNotFound,
	)
}

func (r *noteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	var note domain.Note
	err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrNoteNotFound)
	}
	return &note, nil
}

func (r *noteRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Note, error) {
	var notes []*domain.Note
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Note{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *noteRepository) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Delete(&domain.Note{}).Error
}

func (r *noteRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("task_id IN (?)", r.db.Model(&domain.Task{}).Select("id").Where("project_id = ?", projectID)).
		Delete(&domain.Note{}).Error
}
