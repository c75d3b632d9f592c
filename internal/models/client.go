package models

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SocketEvent is the envelope for every message pushed to a websocket
// client.
type SocketEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// SpotUpdate is the payload of a "spot" event, published once per
// evaluation cycle for every asset the engine looked up.
type SpotUpdate struct {
	AssetID  string  `json:"asset_id"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
	At       int64   `json:"at"`
}

func NewSpotUpdate(assetID, currency string, price float64) SpotUpdate {
	return SpotUpdate{AssetID: assetID, Currency: currency, Price: price, At: time.Now().UnixMilli()}
}

// Client is one connected websocket consumer. Assets holds the asset ids
// the client subscribed to for spot updates; trigger events go to every
// client regardless of subscriptions.
type Client struct {
	ID       string
	Conn     *websocket.Conn
	Send     chan SocketEvent
	Assets   map[string]bool
	AssetsMu sync.RWMutex
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     id,
		Conn:   conn,
		Send:   make(chan SocketEvent, 256),
		Assets: make(map[string]bool),
	}
}

func (c *Client) Subscribe(assetID string) {
	c.AssetsMu.Lock()
	c.Assets[assetID] = true
	c.AssetsMu.Unlock()
}

func (c *Client) Unsubscribe(assetID string) {
	c.AssetsMu.Lock()
	delete(c.Assets, assetID)
	c.AssetsMu.Unlock()
}

func (c *Client) IsSubscribed(assetID string) bool {
	c.AssetsMu.RLock()
	defer c.AssetsMu.RUnlock()
	return c.Assets[assetID]
}

func (c *Client) SubscribedAssets() []string {
	c.AssetsMu.RLock()
	defer c.AssetsMu.RUnlock()
	assets := make([]string, 0, len(c.Assets))
	for asset := range c.Assets {
		assets = append(assets, asset)
	}
	return assets
}

func (c *Client) Close() {
	if c.Conn != nil {
		c.Conn.Close()
	}
}

type SocketMessage struct {
	Action  string `json:"action"`
	AssetID string `json:"asset_id"`
}

type SubscriptionResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Assets  []string `json:"assets,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
