package service

import (
	"context"
	"strings"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/dom/uptask-server/internal/repository"
	"github.com/google/uuid"
)

type NoteService struct {
	notes  repository.NoteRepository
	events EventPublisher
}

func NewNoteService(repos *repository.Repositories, events EventPublisher) *NoteService {
	return &NoteService{
		notes:  repos.Note,
		events: orNoop(events),
	}
}

func (s *NoteService) Create(ctx context.Context, actorID uuid.UUID, task *domain.Task, content string) (*domain.Note, error) {
	note := &domain.Note{
		ID:        uuid.New(),
		TaskID:    task.ID,
		CreatedBy: actorID,
		Content:   strings.TrimSpace(content),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	s.events.Publish(newEvent(domain.EventNoteCreated, task.ProjectID, actorID, note))
	return note, nil
}

func (s *NoteService) List(ctx context.Context, task *domain.Task) ([]*domain.Note, error) {
	return s.notes.ListByTask(ctx, task.ID)
}

func (s *NoteService) Delete(ctx context.Context, actorID uuid.UUID, task *domain.Task, note *domain.Note) error {
	if err := s.notes.Delete(ctx, note.ID); err != nil {
		return err
	}

	s.events.Publish(newEvent(domain.EventNoteDeleted, task.ProjectID, actorID, map[string]uuid.UUID{"id": note.ID}))
	return nil
}
