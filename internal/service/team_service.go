package service

import (
	"context"
	"errors"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/dom/uptask-server/internal/repository"
	"github.com/google/uuid"
)

type TeamService struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
	events   EventPublisher
}

func NewTeamService(repos *repository.Repositories, events EventPublisher) *TeamService {
	return &TeamService{
		users:    repos.User,
		projects: repos.Project,
		events:   orNoop(events),
	}
}

// FindByEmail looks up a user to invite.
func (s *TeamService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, trimEmail(email))
}

func (s *TeamService) List(ctx context.Context, project *domain.Project) ([]*domain.User, error) {
	return s.projects.ListMembers(ctx, project.ID)
}

// Add puts userID on the project team.
func (s *TeamService) Add(ctx context.Context, actorID uuid.UUID, project *domain.Project, userID uuid.UUID) (*domain.User, error) {
	if project.IsManager(userID) {
		return nil, domain.ErrManagerAsMember
	}
	if project.HasMember(userID) {
		return nil, domain.ErrAlreadyMember
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.projects.AddMember(ctx, project.ID, userID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, err
	}

	event := newEvent(domain.EventTeamAdded, project.ID, actorID, user)
	event.Subject = userID
	s.events.Publish(event)
	return user, nil
}

// Remove takes userID off the project team.
func (s *TeamService) Remove(ctx context.Context, actorID uuid.UUID, project *domain.Project, userID uuid.UUID) error {
	if err := s.projects.RemoveMember(ctx, project.ID, userID); err != nil {
		return err
	}

	event := newEvent(domain.EventTeamRemoved, project.ID, actorID, map[string]uuid.UUID{"id": userID})
	event.Subject = userID
	s.events.Publish(event)
	return nil
}
