package service

import (
	"context"
	"strings"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/dom/uptask-server/internal/repository"
	"github.com/google/uuid"
)

type ProjectService struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	tx       repository.Transactor
	events   EventPublisher
}

func NewProjectService(repos *repository.Repositories, tx repository.Transactor, events EventPublisher) *ProjectService {
	return &ProjectService{
		projects: repos.Project,
		tasks:    repos.Task,
		tx:       tx,
		events:   orNoop(events),
	}
}

type ProjectInput struct {
	ProjectName string
	ClientName  string
	Description string
}

func (s *ProjectService) Create(ctx context.Context, managerID uuid.UUID, input ProjectInput) (*domain.Project, error) {
	project := &domain.Project{
		ID:          uuid.New(),
		ProjectName: strings.TrimSpace(input.ProjectName),
		ClientName:  strings.TrimSpace(input.ClientName),
		Description: strings.TrimSpace(input.Description),
		ManagerID:   managerID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// List returns the projects userID manages or belongs to.
func (s *ProjectService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error) {
	return s.projects.ListForUser(ctx, userID)
}

// Detail attaches the project's tasks in board order.
func (s *ProjectService) Detail(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	tasks, err := s.tasks.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	detail := *project
	detail.Tasks = make([]domain.Task, len(tasks))
	for i, t := range tasks {
		detail.Tasks[i] = *t
	}
	return &detail, nil
}

func (s *ProjectService) Update(ctx context.Context, project *domain.Project, input ProjectInput) (*domain.Project, error) {
	project.ProjectName = strings.TrimSpace(input.ProjectName)
	project.ClientName = strings.TrimSpace(input.ClientName)
	project.Description = strings.TrimSpace(input.Description)
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project with its roster, tasks and notes.
func (s *ProjectService) Delete(ctx context.Context, actorID uuid.UUID, project *domain.Project) error {
	err := s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		if err := repos.Note.DeleteByProject(ctx, project.ID); err != nil {
			return err
		}
		if err := repos.Task.DeleteByProject(ctx, project.ID); err != nil {
			return err
		}
		return repos.Project.Delete(ctx, project.ID)
	})
	if err != nil {
		return err
	}

	s.events.Publish(newEvent(domain.EventProjectDeleted, project.ID, actorID, nil))
	return nil
}
