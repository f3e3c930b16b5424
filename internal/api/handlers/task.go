package handlers

import (
	"net/http"

	"github.com/dom/uptask-server/internal/access"
	"github.com/dom/uptask-server/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type TaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (req TaskRequest) validate() error {
	return firstError(required("name", req.Name), required("description", req.Description))
}

type StatusRequest struct {
	Status string `json:"status"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	var req TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.CreateTask", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, "handlers.CreateTask", err)
		return
	}

	task, err := h.taskService.Create(r.Context(), scope.Actor, scope.Project, service.TaskInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, "handlers.CreateTask", err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	tasks, err := h.taskService.List(r.Context(), scope.Project)
	if err != nil {
		writeError(w, "handlers.ListTasks", err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	task, err := h.taskService.Detail(r.Context(), scope.Task)
	if err != nil {
		writeError(w, "handlers.GetTask", err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	var req TaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.UpdateTask", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, "handlers.UpdateTask", err)
		return
	}

	_, err := h.taskService.Update(r.Context(), scope.Actor, scope.Task, service.TaskInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, "handlers.UpdateTask", err)
		return
	}

	writeMessage(w, http.StatusOK, "task updated")
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	if err := h.taskService.Delete(r.Context(), scope.Actor, scope.Task); err != nil {
		writeError(w, "handlers.DeleteTask", err)
		return
	}

	writeMessage(w, http.StatusOK, "task deleted")
}

func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.SetTaskStatus", err)
		return
	}

	if _, err := h.taskService.SetStatus(r.Context(), scope.Actor, scope.Task, req.Status); err != nil {
		writeError(w, "handlers.SetTaskStatus", err)
		return
	}

	writeMessage(w, http.StatusOK, "task status updated")
}
