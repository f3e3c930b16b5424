package repository

import (
	"context"
	"time"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	GetByValue(ctx context.Context, value string, purpose domain.TokenPurpose) (*domain.Token, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserAndPurpose(ctx context.Context, userID uuid.UUID, purpose domain.TokenPurpose) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	// GetByIDForUpdate loads the project and locks its row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]*domain.User, error)
	AddMember(ctx context.Context, projectID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	// GetDetail loads the task with its notes and their authors.
	GetDetail(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Task, error)
	NextPosition(ctx context.Context, projectID uuid.UUID) (int, error)
	// Update writes name and description; UpdateStatus writes status and
	// history. Both fail with not found instead of recreating a deleted row.
	Update(ctx context.Context, task *domain.Task) error
	UpdateStatus(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Note, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByTask(ctx context.Context, taskID uuid.UUID) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

type Repositories struct {
	User    UserRepository
	Token   TokenRepository
	Project ProjectRepository
	Task    TaskRepository
	Note    NoteRepository
}

// Transactor runs fn as a single unit of work. The repositories handed to fn
// share one transaction; if fn returns an error nothing fn wrote is kept.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos *Repositories) error) error
}
