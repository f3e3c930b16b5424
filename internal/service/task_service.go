package service

import (
	"context"
	"strings"
	"time"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/dom/uptask-server/internal/repository"
	"github.com/google/uuid"
)

type TaskService struct {
	tasks  repository.TaskRepository
	tx     repository.Transactor
	events EventPublisher
}

func NewTaskService(repos *repository.Repositories, tx repository.Transactor, events EventPublisher) *TaskService {
	return &TaskService{
		tasks:  repos.Task,
		tx:     tx,
		events: orNoop(events),
	}
}

type TaskInput struct {
	Name        string
	Description string
}

// Create appends a task to the end of the project's board. The project row
// is locked while the position is assigned.
func (s *TaskService) Create(ctx context.Context, actorID uuid.UUID, project *domain.Project, input TaskInput) (*domain.Task, error) {
	task := &domain.Task{
		ID:          uuid.New(),
		ProjectID:   project.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TaskStatusPending,
	}

	err := s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		if _, err := repos.Project.GetByIDForUpdate(ctx, project.ID); err != nil {
			return err
		}
		pos, err := repos.Task.NextPosition(ctx, project.ID)
		if err != nil {
			return err
		}
		task.Position = pos
		return repos.Task.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(newEvent(domain.EventTaskCreated, project.ID, actorID, task))
	return task, nil
}

func (s *TaskService) List(ctx context.Context, project *domain.Project) ([]*domain.Task, error) {
	return s.tasks.ListByProject(ctx, project.ID)
}

// Detail loads the task with its notes.
func (s *TaskService) Detail(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return s.tasks.GetDetail(ctx, task.ID)
}

func (s *TaskService) Update(ctx context.Context, actorID uuid.UUID, task *domain.Task, input TaskInput) (*domain.Task, error) {
	task.Name = strings.TrimSpace(input.Name)
	task.Description = strings.TrimSpace(input.Description)
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.events.Publish(newEvent(domain.EventTaskUpdated, task.ProjectID, actorID, task))
	return task, nil
}

// Delete removes the task and its notes.
func (s *TaskService) Delete(ctx context.Context, actorID uuid.UUID, task *domain.Task) error {
	err := s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		if err := repos.Note.DeleteByTask(ctx, task.ID); err != nil {
			return err
		}
		return repos.Task.Delete(ctx, task.ID)
	})
	if err != nil {
		return err
	}

	s.events.Publish(newEvent(domain.EventTaskDeleted, task.ProjectID, actorID, map[string]uuid.UUID{"id": task.ID}))
	return nil
}

// SetStatus moves the task to status and records who did it.
func (s *TaskService) SetStatus(ctx context.Context, actorID uuid.UUID, task *domain.Task, status string) (*domain.Task, error) {
	st, err := domain.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}

	// The row lock serializes concurrent changes so no history entry is lost.
	var updated *domain.Task
	err = s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		current, err := repos.Task.GetByIDForUpdate(ctx, task.ID)
		if err != nil {
			return err
		}
		current.RecordStatus(actorID, st, time.Now())
		if err := repos.Task.UpdateStatus(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(newEvent(domain.EventTaskStatus, updated.ProjectID, actorID, updated))
	return updated, nil
}
