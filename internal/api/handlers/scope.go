package handlers

import (
	"net/http"

	"github.com/dom/uptask-server/internal/access"
	"github.com/dom/uptask-server/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

// ScopedHandlerFunc handles a request whose path was resolved by a chain.
type ScopedHandlerFunc func(w http.ResponseWriter, r *http.Request, scope access.Scope)

// Scoped resolves the path parameters with chain and passes the result to
// next. Requests that fail any step never reach next.
func Scoped(chain access.Chain, next ScopedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authorized"})
			return
		}

		scope, err := chain.Resolve(r.Context(), userID, pathParams(r))
		if err != nil {
			writeError(w, "handlers.Scoped", err)
			return
		}

		next(w, r, scope)
	}
}

func pathParams(r *http.Request) access.Params {
	return access.Params{
		ProjectID: chi.URLParam(r, "projectId"),
		TaskID:    chi.URLParam(r, "taskId"),
		NoteID:    chi.URLParam(r, "noteId"),
	}
}
