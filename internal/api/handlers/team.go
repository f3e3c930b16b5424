package handlers

import (
	"net/http"

	"github.com/dom/uptask-server/internal/access"
	"github.com/dom/uptask-server/internal/service"
	"github.com/go-chi/chi/v5"
)

type TeamHandler struct {
	teamService *service.TeamService
}

func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

type MemberRequest struct {
	ID string `json:"id"`
}

func (h *TeamHandler) Find(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	var req EmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.FindMember", err)
		return
	}
	if err := validEmail(req.Email); err != nil {
		writeError(w, "handlers.FindMember", err)
		return
	}

	user, err := h.teamService.FindByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, "handlers.FindMember", err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	members, err := h.teamService.List(r.Context(), scope.Project)
	if err != nil {
		writeError(w, "handlers.ListMembers", err)
		return
	}

	resp := make([]UserResponse, len(members))
	for i, m := range members {
		resp[i] = newUserResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TeamHandler) Add(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	var req MemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.AddMember", err)
		return
	}
	userID, err := validID("user id", req.ID)
	if err != nil {
		writeError(w, "handlers.AddMember", err)
		return
	}

	if _, err := h.teamService.Add(r.Context(), scope.Actor, scope.Project, userID); err != nil {
		writeError(w, "handlers.AddMember", err)
		return
	}

	writeMessage(w, http.StatusOK, "user added to the project")
}

func (h *TeamHandler) Remove(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	userID, err := validID("user id", chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, "handlers.RemoveMember", err)
		return
	}

	if err := h.teamService.Remove(r.Context(), scope.Actor, scope.Project, userID); err != nil {
		writeError(w, "handlers.RemoveMember", err)
		return
	}

	writeMessage(w, http.StatusOK, "user removed from the project")
}
