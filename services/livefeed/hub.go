package livefeed

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/AdityaCodess/FinStock-AI/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Constants for feed configuration
const (
	MaxClients          = 100 // Maximum concurrent WebSocket clients
	WriteTimeout        = 10 * time.Second
	PongTimeout         = 60 * time.Second
	PingInterval        = 30 * time.Second
	DefaultPushInterval = 5 * time.Second
	DefaultSymbol       = "RELIANCE.NS"
)

// IntradaySource produces the record pushed to each client.
type IntradaySource interface {
	Intraday(symbol string) models.IntradayPrediction
}

// FeedMessage is the wire envelope for feed updates.
type FeedMessage struct {
	Type string                    `json:"type"`
	Data models.IntradayPrediction `json:"data"`
}

// Client is one WebSocket connection tracking a single symbol.
type Client struct {
	id     string
	symbol string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
}

// Hub owns the client set and pushes a fresh intraday record to every
// client on a fixed interval until it disconnects.
type Hub struct {
	source     IntradaySource
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	shutdown   chan struct{}
	mu         sync.RWMutex
	closeOnce  sync.Once
	upgrader   websocket.Upgrader

	pushInterval time.Duration
}

// NewHub creates the hub and starts its bookkeeping loop.
func NewHub(source IntradaySource) *Hub {
	h := &Hub{
		source:     source,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		shutdown:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		pushInterval: DefaultPushInterval,
	}
	go h.run()
	return h
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection and stops the hub. Safe to call
// more than once.
func (h *Hub) Shutdown() {
	h.closeOnce.Do(func() {
		close(h.shutdown)

		h.mu.Lock()
		for client := range h.clients {
			h.release(client)
		}
		h.clients = make(map[*Client]bool)
		h.mu.Unlock()

		log.Println("Live feed hub shutdown complete")
	})
}

func (h *Hub) run() {
	for {
		select {
		case <-h.shutdown:
			return

		case client := <-h.register:
			h.mu.Lock()
			if len(h.clients) >= MaxClients {
				h.mu.Unlock()
				client.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "Server at capacity"))
				client.conn.Close()
				log.Printf("Feed client rejected: max clients reached (%d)", MaxClients)
				continue
			}
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("Feed client %s connected for %s. Total clients: %d", client.id, client.symbol, count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.release(client)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("Feed client %s disconnected. Total clients: %d", client.id, count)
		}
	}
}

// release stops a client's pumps. Callers hold the hub lock. The send
// channel is never closed here: pushLoop may be selecting a send on it
// concurrently, and closing done already stops both pumps.
func (h *Hub) release(client *Client) {
	close(client.done)
	client.conn.Close()
}

// HandleWebSocket upgrades the connection and starts the per-client
// pumps. The tracked symbol comes from the ?symbol= query parameter.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	atCapacity := len(h.clients) >= MaxClients
	h.mu.RUnlock()
	if atCapacity {
		http.Error(w, "Server at capacity", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = DefaultSymbol
	}

	client := &Client{
		id:     uuid.NewString(),
		symbol: symbol,
		conn:   conn,
		send:   make(chan []byte, 16),
		done:   make(chan struct{}),
	}

	select {
	case h.register <- client:
	case <-h.shutdown:
		conn.Close()
		return
	}

	go h.pushLoop(client)
	go client.writePump()
	go client.readPump(h)
}

// pushLoop computes and queues a fresh intraday record on every tick.
// A full send buffer counts as a disconnect.
func (h *Hub) pushLoop(client *Client) {
	ticker := time.NewTicker(h.pushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-client.done:
			return
		case <-ticker.C:
			message := FeedMessage{
				Type: "intraday_update",
				Data: h.source.Intraday(client.symbol),
			}
			data, err := json.Marshal(message)
			if err != nil {
				log.Printf("Error marshaling feed message: %v", err)
				continue
			}

			select {
			case client.send <- data:
			case <-client.done:
				return
			default:
				h.drop(client)
				return
			}
		}
	}
}

// writePump writes queued messages and keep-alive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// drop requests an unregister without blocking past hub shutdown.
func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.shutdown:
	}
}

// readPump drains the connection to detect disconnects and keep the
// pong handler firing. Any read error releases the registration.
func (c *Client) readPump(h *Hub) {
	defer h.drop(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(PongTimeout))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
	}
}
