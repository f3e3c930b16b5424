package websocket

import (
	"log"
	"sync"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
)

// Hub fans project events out to the sockets subscribed to that project.
type Hub struct {
	projects   map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan domain.Event
	stop       chan struct{}
	stopOnce   sync.Once
	done       chan struct{} // closed when Run() exits
	stopped    bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		projects:   make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan domain.Event, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, clients := range h.projects {
				for client := range clients {
					client.Close()
				}
			}
			h.projects = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				clients, ok := h.projects[client.projectID]
				if !ok {
					clients = make(map[*Client]bool)
					h.projects[client.projectID] = clients
				}
				clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			h.deliver(event)
			h.mu.Unlock()
		}
	}
}

// Stop closes every subscription and blocks until Run has returned. It is
// safe to call from several goroutines.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Register subscribes client to its project.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Publish queues event for the subscribers of event.ProjectID. It never
// blocks; events are dropped when the queue is full.
func (h *Hub) Publish(event domain.Event) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("ERROR [websocket.Hub.Publish] queue full, dropping %s for project %s", event.Type, event.ProjectID)
	}
}

// Subscribers returns how many sockets follow projectID.
func (h *Hub) Subscribers(projectID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.projects[projectID])
}

// deliver must be called with h.mu held.
func (h *Hub) deliver(event domain.Event) {
	clients := h.projects[event.ProjectID]
	if len(clients) == 0 {
		return
	}

	msg, err := NewEventMessage(event)
	if err != nil {
		log.Printf("ERROR [websocket.Hub.deliver] failed to encode %s: %v", event.Type, err)
		return
	}

	for client := range clients {
		if !client.trySend(msg) {
			log.Printf("ERROR [websocket.Hub.deliver] client %s too slow, disconnecting", client.userID)
			h.remove(client)
			continue
		}
		// A removed member loses access to the project stream.
		if event.Type == domain.EventTeamRemoved && client.userID == event.Subject {
			h.remove(client)
		}
	}

	if event.Type == domain.EventProjectDeleted {
		for client := range clients {
			h.remove(client)
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.projects[client.projectID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	client.Close()
	if len(clients) == 0 {
		delete(h.projects, client.projectID)
	}
}
