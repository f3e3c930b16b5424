package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/uptask-server/internal/auth"
	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name      string
	email     string
	password  string
	confirmed bool
}

// NewUserBuilder creates a confirmed user with a unique email
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		name:      fmt.Sprintf("user %s", suffix),
		email:     fmt.Sprintf("user_%s@example.com", suffix),
		password:  "testpassword123",
		confirmed: true,
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Unconfirmed leaves the account pending
func (b *UserBuilder) Unconfirmed() *UserBuilder {
	b.confirmed = false
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hash, err := auth.HashPassword(b.password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         b.name,
		Email:        b.email,
		PasswordHash: hash,
		Confirmed:    b.confirmed,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildAndAuthenticate creates the user and issues a session token for it
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, _ := b.Build(t, ts.DB.DB)
	token, err := ts.Sessions.Issue(user.ID)
	if err != nil {
		t.Fatalf("failed to issue session: %v", err)
	}
	return user, token
}

// ProjectBuilder creates test projects
type ProjectBuilder struct {
	name    string
	manager *domain.User
	members []*domain.User
}

func NewProjectBuilder() *ProjectBuilder {
	return &ProjectBuilder{
		name: fmt.Sprintf("project %s", uuid.New().String()[:8]),
	}
}

func (b *ProjectBuilder) WithName(name string) *ProjectBuilder {
	b.name = name
	return b
}

func (b *ProjectBuilder) WithManager(user *domain.User) *ProjectBuilder {
	b.manager = user
	return b
}

func (b *ProjectBuilder) WithMember(user *domain.User) *ProjectBuilder {
	b.members = append(b.members, user)
	return b
}

// Build creates the project and its team rows
func (b *ProjectBuilder) Build(t *testing.T, db *gorm.DB) *domain.Project {
	t.Helper()

	if b.manager == nil {
		b.manager, _ = NewUserBuilder().Build(t, db)
	}

	project := &domain.Project{
		ID:          uuid.New(),
		ProjectName: b.name,
		ClientName:  "Test Client",
		Description: "Test description",
		ManagerID:   b.manager.ID,
	}

	if err := db.Omit("Team", "Tasks", "Manager").Create(project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	for _, m := range b.members {
		member := &domain.ProjectMember{ProjectID: project.ID, UserID: m.ID}
		if err := db.Create(member).Error; err != nil {
			t.Fatalf("failed to add member: %v", err)
		}
		project.Team = append(project.Team, *m)
	}

	return project
}

// TaskBuilder creates test tasks
type TaskBuilder struct {
	project  *domain.Project
	name     string
	status   domain.TaskStatus
	position int
}

func NewTaskBuilder(project *domain.Project) *TaskBuilder {
	return &TaskBuilder{
		project: project,
		name:    fmt.Sprintf("task %s", uuid.New().String()[:8]),
		status:  domain.TaskStatusPending,
	}
}

func (b *TaskBuilder) WithName(name string) *TaskBuilder {
	b.name = name
	return b
}

func (b *TaskBuilder) WithStatus(status domain.TaskStatus) *TaskBuilder {
	b.status = status
	return b
}

func (b *TaskBuilder) WithPosition(position int) *TaskBuilder {
	b.position = position
	return b
}

func (b *TaskBuilder) Build(t *testing.T, db *gorm.DB) *domain.Task {
	t.Helper()

	task := &domain.Task{
		ID:          uuid.New(),
		ProjectID:   b.project.ID,
		Name:        b.name,
		Description: "Test task",
		Status:      b.status,
		Position:    b.position,
	}

	if err := db.Omit("Notes").Create(task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// NoteBuilder creates test notes
type NoteBuilder struct {
	task    *domain.Task
	author  *domain.User
	content string
}

func NewNoteBuilder(task *domain.Task, author *domain.User) *NoteBuilder {
	return &NoteBuilder{
		task:    task,
		author:  author,
		content: "Test note",
	}
}

func (b *NoteBuilder) WithContent(content string) *NoteBuilder {
	b.content = content
	return b
}

func (b *NoteBuilder) Build(t *testing.T, db *gorm.DB) *domain.Note {
	t.Helper()

	note := &domain.Note{
		ID:        uuid.New(),
		TaskID:    b.task.ID,
		CreatedBy: b.author.ID,
		Content:   b.content,
	}

	if err := db.Omit("Author").Create(note).Error; err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	return note
}

// CreateToken stores a single-use token issued at createdAt and returns its value
func CreateToken(t *testing.T, db *gorm.DB, user *domain.User, purpose domain.TokenPurpose, createdAt time.Time) string {
	t.Helper()

	token := &domain.Token{
		ID:        uuid.New(),
		Value:     auth.NewOpaqueToken(),
		UserID:    user.ID,
		Purpose:   purpose,
		CreatedAt: createdAt,
	}

	if err := db.Omit("User").Create(token).Error; err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	return token.Value
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends an optionally authenticated JSON request. The caller closes the body.
func (ts *TestServer) Do(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()

	req := CreateAuthenticatedRequest(t, method, ts.APIURL(path), body, token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
