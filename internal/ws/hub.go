package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/cryptopulse/backend/internal/models"
)

type outbound struct {
	event models.SocketEvent

	// assetID restricts delivery to clients subscribed to that asset;
	// empty means every client.
	assetID string
}

type Hub struct {
	clients map[string]*models.Client

	register chan *models.Client

	unregister chan *models.Client

	broadcast chan outbound

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*models.Client),
		register:   make(chan *models.Client),
		unregister: make(chan *models.Client),
		broadcast:  make(chan outbound, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				client.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				if msg.assetID != "" && !client.IsSubscribed(msg.assetID) {
					continue
				}
				select {
				case client.Send <- msg.event:
				default:
					log.Warnf("client %s buffer full, skipping message", client.ID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn) *models.Client {
	clientID := uuid.New().String()
	client := models.NewClient(clientID, conn)
	h.register <- client
	return client
}

func (h *Hub) UnregisterClient(client *models.Client) {
	h.unregister <- client
}

// BroadcastSpot delivers a per-cycle price observation to clients
// subscribed to the asset.
func (h *Hub) BroadcastSpot(update models.SpotUpdate) {
	h.broadcast <- outbound{
		event:   models.SocketEvent{Type: "spot", Payload: update},
		assetID: update.AssetID,
	}
}

// BroadcastTrigger delivers a fired alert to every connected client.
func (h *Hub) BroadcastTrigger(event *models.TriggerEvent) {
	h.broadcast <- outbound{
		event: models.SocketEvent{Type: "alert_triggered", Payload: event},
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
