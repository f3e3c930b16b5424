// Package access resolves nested project paths into loaded entities and
// decides whether the caller may act on them.
//
// A Chain is an ordered list of Steps. Each route assembles the steps it
// needs; the result is a Scope that is passed to the handler explicitly.
package access

import (
	"context"
	"errors"
	"log"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/dom/uptask-server/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "uptask/access"

var (
	ErrDenied           = domain.NewError(domain.ErrForbidden, "invalid action")
	ErrNotAuthor        = domain.NewError(domain.ErrForbidden, "only the author can delete a note")
	ErrInvalidProjectID = domain.Validationf("invalid project id")
	ErrInvalidTaskID    = domain.Validationf("invalid task id")
	ErrInvalidNoteID    = domain.Validationf("invalid note id")

	// ErrChainOrder means a step ran before the step that loads what it needs.
	ErrChainOrder = errors.New("access: step requires an earlier segment")
)

// Params are the raw path identifiers of a request.
type Params struct {
	ProjectID string
	TaskID    string
	NoteID    string
}

// Scope is what a chain resolved for one request.
type Scope struct {
	Actor   uuid.UUID
	Project *domain.Project
	Task    *domain.Task
	Note    *domain.Note
}

// Step is one check of a chain. It may fill in the scope.
type Step struct {
	name string
	run  func(ctx context.Context, s *Scope, p Params) error
}

func (s Step) Name() string {
	return s.name
}

type Chain struct {
	steps  []Step
	tracer trace.Tracer
}

func NewChain(steps ...Step) Chain {
	return Chain{
		steps:  steps,
		tracer: otel.Tracer(tracerName),
	}
}

// Then returns a new chain with steps appended. c is left unchanged.
func (c Chain) Then(steps ...Step) Chain {
	all := make([]Step, 0, len(c.steps)+len(steps))
	all = append(all, c.steps...)
	all = append(all, steps...)
	return Chain{steps: all, tracer: c.tracer}
}

// Steps returns the step names in evaluation order.
func (c Chain) Steps() []string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.name
	}
	return names
}

// Resolve runs the steps in order for actor and stops at the first failure.
func (c Chain) Resolve(ctx context.Context, actor uuid.UUID, p Params) (Scope, error) {
	scope := Scope{Actor: actor}
	tracer := c.tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	for _, step := range c.steps {
		stepCtx, span := tracer.Start(ctx, "access."+step.name, trace.WithAttributes(
			attribute.String("actor", actor.String()),
			attribute.String("project_id", p.ProjectID),
			attribute.String("task_id", p.TaskID),
			attribute.String("note_id", p.NoteID),
		))
		err := step.run(stepCtx, &scope, p)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return Scope{}, err
		}
		span.End()
	}
	return scope, nil
}

// LoadProject loads the project named by Params.ProjectID.
func LoadProject(projects repository.ProjectRepository) Step {
	return Step{name: "LoadProject", run: func(ctx context.Context, s *Scope, p Params) error {
		id, err := uuid.Parse(p.ProjectID)
		if err != nil {
			return ErrInvalidProjectID
		}
		project, err := projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		s.Project = project
		return nil
	}}
}

// LoadTask loads the task named by Params.TaskID and checks that it belongs
// to the resolved project. A task of another project is reported exactly
// like a missing one.
func LoadTask(tasks repository.TaskRepository) Step {
	return Step{name: "LoadTask", run: func(ctx context.Context, s *Scope, p Params) error {
		if s.Project == nil {
			return ErrChainOrder
		}
		id, err := uuid.Parse(p.TaskID)
		if err != nil {
			return ErrInvalidTaskID
		}
		task, err := tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if task.ProjectID != s.Project.ID {
			return domain.ErrTaskNotFound
		}
		s.Task = task
		return nil
	}}
}

// LoadNote loads the note named by Params.NoteID and checks that it belongs
// to the resolved task.
func LoadNote(notes repository.NoteRepository) Step {
	return Step{name: "LoadNote", run: func(ctx context.Context, s *Scope, p Params) error {
		if s.Task == nil {
			return ErrChainOrder
		}
		id, err := uuid.Parse(p.NoteID)
		if err != nil {
			return ErrInvalidNoteID
		}
		note, err := notes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if note.TaskID != s.Task.ID {
			return domain.ErrNoteNotFound
		}
		s.Note = note
		return nil
	}}
}

// Require checks the actor's permission for action on the resolved project.
func Require(action Action) Step {
	return Step{name: "Require(" + string(action) + ")", run: func(ctx context.Context, s *Scope, p Params) error {
		if s.Project == nil {
			return ErrChainOrder
		}
		if Permission(s.Actor, s.Project, action) != Allowed {
			log.Printf("WARN [access.Require] user=%s project=%s action=%s denied", s.Actor, s.Project.ID, action)
			return ErrDenied
		}
		return nil
	}}
}

// RequireNoteAuthor only lets the author of the resolved note through.
func RequireNoteAuthor() Step {
	return Step{name: "RequireNoteAuthor", run: func(ctx context.Context, s *Scope, p Params) error {
		if s.Note == nil {
			return ErrChainOrder
		}
		if s.Note.CreatedBy != s.Actor {
			return ErrNotAuthor
		}
		return nil
	}}
}
