package handlers

import (
	"log"
	"net/http"

	"github.com/dom/uptask-server/internal/access"
	"github.com/dom/uptask-server/internal/auth"
	"github.com/dom/uptask-server/internal/websocket"
	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler streams project events over a websocket. Browsers cannot set
// headers on the upgrade request, so the session token is a query parameter.
type EventsHandler struct {
	hub      *websocket.Hub
	sessions *auth.SessionCodec
	chain    access.Chain
}

func NewEventsHandler(hub *websocket.Hub, sessions *auth.SessionCodec, resolver *access.Resolver) *EventsHandler {
	return &EventsHandler{
		hub:      hub,
		sessions: sessions,
		chain:    resolver.Project(access.ActionSubscribe),
	}
}

func (h *EventsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "token required"})
		return
	}

	userID, err := h.sessions.Verify(token)
	if err != nil {
		writeError(w, "handlers.Subscribe", err)
		return
	}

	scope, err := h.chain.Resolve(r.Context(), userID, pathParams(r))
	if err != nil {
		writeError(w, "handlers.Subscribe", err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, scope.Project.ID, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
