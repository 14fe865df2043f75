package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Hub struct {
	clients    map[*Client]bool
	companies  map[uuid.UUID]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		companies:  make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.broadcastToCompany(event)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.companies[client.companyID] == nil {
		h.companies[client.companyID] = make(map[*Client]bool)
	}
	h.companies[client.companyID][client] = true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		delete(h.companies[client.companyID], client)

		if len(h.companies[client.companyID]) == 0 {
			delete(h.companies, client.companyID)
		}

		close(client.send)
	}
}

func (h *Hub) broadcastToCompany(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.companies[event.CompanyID]
	if clients == nil {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			delete(h.companies[event.CompanyID], client)
		}
	}
}

func (h *Hub) BroadcastToCompany(companyID uuid.UUID, eventType EventType, data interface{}) {
	event := Event{
		CompanyID: companyID,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
	}
}

func (h *Hub) GetConnectedClients(companyID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.companies[companyID])
}
