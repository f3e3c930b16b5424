package service

import (
	"github.com/dom/uptask-server/internal/auth"
	"github.com/dom/uptask-server/internal/config"
	"github.com/dom/uptask-server/internal/notify"
	"github.com/dom/uptask-server/internal/repository"
)

type Services struct {
	Auth    *AuthService
	Project *ProjectService
	Task    *TaskService
	Team    *TeamService
	Note    *NoteService
}

// NewServices wires the services. A nil events publisher drops events.
func NewServices(
	repos *repository.Repositories,
	tx repository.Transactor,
	sessions *auth.SessionCodec,
	notifier notify.Notifier,
	events EventPublisher,
	cfg *config.Config,
) *Services {
	return &Services{
		Auth:    NewAuthService(repos, tx, sessions, notifier, cfg.TokenTTL),
		Project: NewProjectService(repos, tx, events),
		Task:    NewTaskService(repos, tx, events),
		Team:    NewTeamService(repos, events),
		Note:    NewNoteService(repos, events),
	}
}
