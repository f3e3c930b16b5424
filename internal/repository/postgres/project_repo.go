package postgres

import (
	"context"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *projectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	return translate(
		r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error,
		domain.ErrProjectNotFound,
	)
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Preload("Team", func(db *gorm.DB) *gorm.DB {
			return db.Order("users.name")
		}).
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrProjectNotFound)
	}
	return &project, nil
}

func (r *projectRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrProjectNotFound)
	}
	return &project, nil
}

func (r *projectRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error) {
	var projects []*domain.Project
	err := r.db.WithContext(ctx).
		Preload("Team").
		Where("manager_id = ?", userID).
		Or("id IN (?)", r.db.Model(&domain.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	return updateColumns(r.db.WithContext(ctx), project, project.ID, domain.ErrProjectNotFound,
		"project_name", "client_name", "description", "updated_at")
}

// Delete removes the project and its roster. Tasks and notes are removed by
// the caller inside the same transaction.
func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", id).Delete(&domain.ProjectMember{}).Error; err != nil {
		return err
	}
	result := db.Delete(&domain.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.WithContext(ctx).
		Joins("JOIN project_members ON project_members.user_id = users.id").
		Where("project_members.project_id = ?", projectID).
		Order("users.name").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// AddMember inserts the roster row. The composite primary key turns a
// concurrent duplicate into a domain.ErrConflict error.
func (r *projectRepository) AddMember(ctx context.Context, projectID, userID uuid.UUID) error {
	member := &domain.ProjectMember{ProjectID: projectID, UserID: userID}
	return translate(r.db.WithContext(ctx).Create(member).Error, domain.ErrProjectNotFound)
}

func (r *projectRepository) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&domain.ProjectMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotMember
	}
	return nil
}
