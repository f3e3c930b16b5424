package handlers

import (
	"net/http"

	"github.com/dom/uptask-server/internal/access"
	"github.com/dom/uptask-server/internal/service"
)

type NoteHandler struct {
	noteService *service.NoteService
}

func NewNoteHandler(noteService *service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

type NoteRequest struct {
	Content string `json:"content"`
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	var req NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, "handlers.CreateNote", err)
		return
	}
	if err := required("content", req.Content); err != nil {
		writeError(w, "handlers.CreateNote", err)
		return
	}

	note, err := h.noteService.Create(r.Context(), scope.Actor, scope.Task, req.Content)
	if err != nil {
		writeError(w, "handlers.CreateNote", err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	notes, err := h.noteService.List(r.Context(), scope.Task)
	if err != nil {
		writeError(w, "handlers.ListNotes", err)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request, scope access.Scope) {
	if err := h.noteService.Delete(r.Context(), scope.Actor, scope.Task, scope.Note); err != nil {
		writeError(w, "handlers.DeleteNote", err)
		return
	}

	writeMessage(w, http.StatusOK, "note deleted")
}
