package websocket

import (
	"log"
	"sync"

	"github.com/classlearning/study_journal/models"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const (
	JournalCreated = "journal_created"
	JournalUpdated = "journal_updated"
	JournalDeleted = "journal_deleted"
)

// JournalEvent is a snapshot event on the live journal feed. Events are only
// delivered to the journal's owner.
type JournalEvent struct {
	Type    string         `json:"type"`
	Journal models.Journal `json:"journal"`
}

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// Hub fans journal events out to connected clients. Subscriptions are
// explicit: a client is registered when its websocket authenticates and
// unregistered when the connection tears down, always.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*websocket.Conn

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan *JournalEvent
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*websocket.Conn),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan *JournalEvent, 16),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			log.Printf("Feed client registered: %s", client.UserID)
			h.mu.Lock()
			h.clients[client.UserID] = client.Conn
			h.mu.Unlock()
		case client := <-h.Unregister:
			log.Printf("Feed client unregistered: %s", client.UserID)
			h.mu.Lock()
			if conn, ok := h.clients[client.UserID]; ok && conn == client.Conn {
				delete(h.clients, client.UserID)
			}
			h.mu.Unlock()
		case event := <-h.Broadcast:
			h.deliver(event)
		}
	}
}

// Publish queues an event without blocking the caller; a full queue drops
// the event (the feed is a convenience stream, not a durable log).
func (h *Hub) Publish(eventType string, journal models.Journal) {
	select {
	case h.Broadcast <- &JournalEvent{Type: eventType, Journal: journal}:
	default:
		log.Printf("Journal feed queue full, dropping %s event for user %s", eventType, journal.UserID)
	}
}

func (h *Hub) deliver(event *JournalEvent) {
	h.mu.RLock()
	conn, ok := h.clients[event.Journal.UserID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := conn.WriteJSON(event); err != nil {
		log.Printf("Error sending journal event to client %s: %v", event.Journal.UserID, err)
		conn.Close()
		h.mu.Lock()
		if current, ok := h.clients[event.Journal.UserID]; ok && current == conn {
			delete(h.clients, event.Journal.UserID)
		}
		h.mu.Unlock()
	}
}
