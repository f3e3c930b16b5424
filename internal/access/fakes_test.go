package access_test

import (
	"context"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
)

// In-memory lookups. Only the methods the chain calls are implemented.

type fakeProjects struct {
	byID  map[uuid.UUID]*domain.Project
	calls int
}

func (f *fakeProjects) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	f.calls++
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrProjectNotFound
}

func (f *fakeProjects) Create(context.Context, *domain.Project) error { panic("unused") }
func (f *fakeProjects) GetByIDForUpdate(context.Context, uuid.UUID) (*domain.Project, error) {
	panic("unused")
}
func (f *fakeProjects) ListForUser(context.Context, uuid.UUID) ([]*domain.Project, error) {
	panic("unused")
}
func (f *fakeProjects) Update(context.Context, *domain.Project) error { panic("unused") }
func (f *fakeProjects) Delete(context.Context, uuid.UUID) error        { panic("unused") }
func (f *fakeProjects) ListMembers(context.Context, uuid.UUID) ([]*domain.User, error) {
	panic("unused")
}
func (f *fakeProjects) AddMember(context.Context, uuid.UUID, uuid.UUID) error    { panic("unused") }
func (f *fakeProjects) RemoveMember(context.Context, uuid.UUID, uuid.UUID) error { panic("unused") }

type fakeTasks struct {
	byID  map[uuid.UUID]*domain.Task
	calls int
}

func (f *fakeTasks) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	f.calls++
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTaskNotFound
}

func (f *fakeTasks) Create(context.Context, *domain.Task) error { panic("unused") }
func (f *fakeTasks) GetDetail(context.Context, uuid.UUID) (*domain.Task, error) {
	panic("unused")
}
func (f *fakeTasks) ListByProject(context.Context, uuid.UUID) ([]*domain.Task, error) {
	panic("unused")
}
func (f *fakeTasks) NextPosition(context.Context, uuid.UUID) (int, error) { panic("unused") }
func (f *fakeTasks) GetByIDForUpdate(context.Context, uuid.UUID) (*domain.Task, error) {
	panic("unused")
}
func (f *fakeTasks) Update(context.Context, *domain.Task) error       { panic("unused") }
func (f *fakeTasks) UpdateStatus(context.Context, *domain.Task) error { panic("unused") }
func (f *fakeTasks) Delete(context.Context, uuid.UUID) error          { panic("unused") }
func (f *fakeTasks) DeleteByProject(context.Context, uuid.UUID) error { panic("unused") }

type fakeNotes struct {
	byID map[uuid.UUID]*domain.Note
}

func (f *fakeNotes) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	if n, ok := f.byID[id]; ok {
		return n, nil
	}
	return nil, domain.ErrNoteNotFound
}

func (f *fakeNotes) Create(context.Context, *domain.Note) error { panic("unused") }
func (f *fakeNotes) ListByTask(context.Context, uuid.UUID) ([]*domain.Note, error) {
	panic("unused")
}
func (f *fakeNotes) Delete(context.Context, uuid.UUID) error          { panic("unused") }
func (f *fakeNotes) DeleteByTask(context.Context, uuid.UUID) error    { panic("unused") }
func (f *fakeNotes) DeleteByProject(context.Context, uuid.UUID) error { panic("unused") }

// world is two projects, one task in each and a note on the first task.
type world struct {
	manager, member, outsider uuid.UUID

	projectA, projectB *domain.Project
	taskA, taskB       *domain.Task
	noteA              *domain.Note

	projects *fakeProjects
	tasks    *fakeTasks
	notes    *fakeNotes
}

func newWorld() *world {
	w := &world{
		manager:  uuid.New(),
		member:   uuid.New(),
		outsider: uuid.New(),
	}
	w.projectA = &domain.Project{
		ID:          uuid.New(),
		ProjectName: "Website",
		ManagerID:   w.manager,
		Team:        []domain.User{{ID: w.member, Name: "Member"}},
	}
	w.projectB = &domain.Project{ID: uuid.New(), ProjectName: "Other", ManagerID: w.outsider}
	w.taskA = &domain.Task{ID: uuid.New(), ProjectID: w.projectA.ID, Name: "Landing page"}
	w.taskB = &domain.Task{ID: uuid.New(), ProjectID: w.projectB.ID, Name: "Elsewhere"}
	w.noteA = &domain.Note{ID: uuid.New(), TaskID: w.taskA.ID, CreatedBy: w.member, Content: "done soon"}

	w.projects = &fakeProjects{byID: map[uuid.UUID]*domain.Project{
		w.projectA.ID: w.projectA,
		w.projectB.ID: w.projectB,
	}}
	w.tasks = &fakeTasks{byID: map[uuid.UUID]*domain.Task{
		w.taskA.ID: w.taskA,
		w.taskB.ID: w.taskB,
	}}
	w.notes = &fakeNotes{byID: map[uuid.UUID]*domain.Note{w.noteA.ID: w.noteA}}
	return w
}
