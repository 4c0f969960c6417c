package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"attendtrack/api/internal/model"
	"attendtrack/api/internal/service"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development, configure for production
			return true
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	// Heartbeat interval
	pingInterval = 30 * time.Second
	// Write timeout
	writeTimeout = 10 * time.Second
)

// wsEnvelope wraps each pushed message with a type tag.
type wsEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSMessage represents a WebSocket message from client
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// broadcastItem pairs a serialized frame with its originating user so the
// hub can apply per-client username filters at fan-out time.
type broadcastItem struct {
	username string
	frame    []byte
}

// Client represents a WebSocket client connection
type Client struct {
	ID       string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *WSHub
	Username string // Filter by tracked username (empty means all users)
}

// WSHub manages WebSocket clients and fans location updates out to them.
// It is fed by the NATS subjects the binlog relay publishes to, so any
// write to the location table reaches connected dashboards regardless of
// which code path performed it.
type WSHub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastItem
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	done       chan struct{}
	natsConn   *nats.Conn
	sub        *nats.Subscription
	mu         sync.RWMutex
}

// NewWSHub creates a new WebSocket hub
func NewWSHub(nc *nats.Conn) *WSHub {
	return &WSHub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastItem, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		natsConn:   nc,
	}
}

// Run starts the hub's event loop
func (h *WSHub) Run() {
	// The global subject carries every row; per-client username filters
	// are applied at fan-out. The per-user subjects the relay also
	// publishes to exist for external consumers.
	sub, err := h.natsConn.Subscribe(service.SubjectLocationLatest, func(msg *nats.Msg) {
		var locMsg model.LocationMessage
		if err := json.Unmarshal(msg.Data, &locMsg); err != nil {
			log.Printf("[WS] Failed to unmarshal location message: %v", err)
			return
		}

		frame, err := json.Marshal(wsEnvelope{Type: "location", Data: locMsg})
		if err != nil {
			log.Printf("[WS] Failed to marshal broadcast message: %v", err)
			return
		}

		h.broadcast <- broadcastItem{username: locMsg.Username, frame: frame}
	})
	if err != nil {
		log.Printf("[WS] Failed to subscribe to NATS: %v", err)
		close(h.done)
		return
	}
	h.sub = sub

	log.Println("[WS] Hub started, subscribed to location updates")
	h.loop()
}

// loop runs the register/unregister/broadcast event loop until Stop.
func (h *WSHub) loop() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("[WS] Client connected: %s, total clients: %d", client.ID, h.GetClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("[WS] Client disconnected: %s, total clients: %d", client.ID, h.GetClientCount())

		case item := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				if client.Username != "" && client.Username != item.username {
					continue
				}
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.Send <- item.frame:
				default:
					// Send buffer full: drop the client inline. Going
					// through h.unregister here would deadlock, since
					// this goroutine is its only receiver.
					h.drop(client)
				}
			}
		}
	}
}

// drop removes a client that cannot keep up with the broadcast rate.
func (h *WSHub) drop(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
	h.mu.Unlock()
	log.Printf("[WS] Client dropped (send buffer full): %s, total clients: %d", client.ID, h.GetClientCount())
}

// Stop stops the hub and cleans up resources. The event loop is shut
// down first so no broadcast can race the channel closes below.
func (h *WSHub) Stop() {
	if h.sub != nil {
		h.sub.Unsubscribe()
	}
	close(h.quit)
	<-h.done

	h.mu.Lock()
	for client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
		delete(h.clients, client)
	}
	h.mu.Unlock()
}

// GetClientCount returns the number of connected clients
func (h *WSHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ReadPump handles incoming messages from the client
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512 * 1024) // 512KB max message size
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Client %s read error: %v", c.ID, err)
			}
			break
		}

		// Handle client messages (e.g., subscribe to a single user)
		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err == nil {
			switch wsMsg.Type {
			case "subscribe":
				var data struct {
					Username string `json:"username"`
				}
				if err := json.Unmarshal(wsMsg.Data, &data); err == nil && data.Username != "" {
					c.Username = data.Username
					log.Printf("[WS] Client %s subscribed to user %s", c.ID, c.Username)
				}
			case "ping":
				select {
				case c.Send <- []byte(`{"type":"pong"}`):
				default:
				}
			}
		}
	}
}

// WritePump handles outgoing messages to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WSHandler handles WebSocket connections
type WSHandler struct {
	hub *WSHub
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(hub *WSHub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleLocation handles WebSocket connections for location updates
func (h *WSHandler) HandleLocation(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Failed to upgrade connection: %v", err)
		return
	}

	clientID := c.Query("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	client := &Client{
		ID:       clientID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
		Username: c.Query("username"), // optional per-user filter
	}

	client.Hub.register <- client

	go client.WritePump()
	go client.ReadPump()

	welcome, err := json.Marshal(wsEnvelope{
		Type: "connected",
		Data: gin.H{"client_id": clientID},
	})
	if err == nil {
		select {
		case client.Send <- welcome:
		default:
		}
	}
}

// GetStats returns WebSocket hub statistics
func (h *WSHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": h.hub.GetClientCount(),
	})
}
