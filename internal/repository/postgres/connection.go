package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/dom/uptask-server/internal/repository"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the repositories use.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&domain.Project{}, "Team", &domain.ProjectMember{}); err != nil {
		return fmt.Errorf("setup project_members: %w", err)
	}

	return db.AutoMigrate(
		&domain.User{},
		&domain.Token{},
		&domain.Project{},
		&domain.ProjectMember{},
		&domain.Task{},
		&domain.Note{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Token:   NewTokenRepository(db),
		Project: NewProjectRepository(db),
		Task:    NewTaskRepository(db),
		Note:    NewNoteRepository(db),
	}
}

type transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

var errDuplicate = domain.NewError(domain.ErrConflict, "record already exists")

// translate maps gorm errors onto domain kinds. notFound is returned for a
// missing row so callers get an entity-specific message.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", errDuplicate, err)
	default:
		return err
	}
}

// updateColumns writes cols of model to the row with id. It never inserts:
// a row deleted in the meantime yields notFound.
func updateColumns(db *gorm.DB, model any, id uuid.UUID, notFound error, cols ...string) error {
	result := db.Model(model).Where("id = ?", id).Select(cols).Updates(model)
	if result.Error != nil {
		return translate(result.Error, notFound)
	}
	if result.RowsAffected == 0 {
		return notFound
	}
	return nil
}
