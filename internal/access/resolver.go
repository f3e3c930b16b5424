package access

import "github.com/dom/uptask-server/internal/repository"

// Resolver builds the chains used by the HTTP routes.
type Resolver struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	notes    repository.NoteRepository
}

func NewResolver(projects repository.ProjectRepository, tasks repository.TaskRepository, notes repository.NoteRepository) *Resolver {
	return &Resolver{
		projects: projects,
		tasks:    tasks,
		notes:    notes,
	}
}

// Project resolves /projects/{projectId} and requires action.
func (r *Resolver) Project(action Action) Chain {
	return NewChain(LoadProject(r.projects), Require(action))
}

// Task resolves /projects/{projectId}/tasks/{taskId} and requires action.
func (r *Resolver) Task(action Action) Chain {
	return NewChain(LoadProject(r.projects), LoadTask(r.tasks), Require(action))
}

// Note resolves a note below its task and requires action.
func (r *Resolver) Note(action Action) Chain {
	return NewChain(LoadProject(r.projects), LoadTask(r.tasks), LoadNote(r.notes), Require(action))
}

// NoteAuthor is Note(ActionDeleteNote) restricted to the note's author.
func (r *Resolver) NoteAuthor() Chain {
	return r.Note(ActionDeleteNote).Then(RequireNoteAuthor())
}
