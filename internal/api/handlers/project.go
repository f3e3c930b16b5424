package handlers

import (
	"net/http"

	"github.com/dom/uptask-server/internal/access"
	"github.com/dom/uptask-server/internal/api/middleware"
	"github.com/dom/uptask-server/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type ProjectRequest struct {
	ProjectName string `json:"projectName"`
	ClientName  string `json:"clientName"`
	Description string `json:"description"`
}

func (req ProjectRequest) validate() error {
	return firstError(
		required("projectName", req.ProjectName),
		required("clientName", req.ClientName),
		required("description", req.Description),
	)
}

func (req ProjectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		ProjectName: req.ProjectName,
		ClientName:  req.ClientName,
		Description: req.Description,
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req ProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.CreateProject", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, "handlers.CreateProject", err)
		return
	}

	project, err := h.projectService.Create(r.Context(), userID, req.input())
	if err != nil {
		writeError(w, "handlers.CreateProject", err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	projects, err := h.projectService.List(r.Context(), userID)
	if err != nil {
		writeError(w, "handlers.ListProjects", err)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	project, err := h.projectService.Detail(r.Context(), scope.Project)
	if err != nil {
		writeError(w, "handlers.GetProject", err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	var req ProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.UpdateProject", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, "handlers.UpdateProject", err)
		return
	}

	if _, err := h.projectService.Update(r.Context(), scope.Project, req.input()); err != nil {
		writeError(w, "handlers.UpdateProject", err)
		return
	}

	writeMessage(w, http.StatusOK, "project updated")
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	if err := h.projectService.Delete(r.Context(), scope.Actor, scope.Project); err != nil {
		writeError(w, "handlers.DeleteProject", err)
		return
	}

	writeMessage(w, http.StatusOK, "project deleted")
}
