package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// AllChannels subscribes a client to every broadcast
	AllChannels = "*"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the JSON frame pushed to clients
type Message struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data,omitempty"`
}

// Client is one websocket connection subscribed to a single channel
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	channel string
}

// countRequest asks the run loop how many clients listen on a channel
type countRequest struct {
	channel string
	reply   chan int
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by channel
	channels map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	count      chan countRequest
	done       chan struct{}

	logger zerolog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		channels:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop and returns when ctx is cancelled.
// Every client is disconnected on the way out.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for _, clients := range h.channels {
			for client := range clients {
				h.unregisterClient(client)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case req := <-h.count:
			req.reply <- len(h.channels[req.channel])
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to channel
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		channel: channel,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Broadcast queues an event for the clients of channel and for clients
// subscribed to AllChannels. It drops the event once the hub has stopped.
func (h *Hub) Broadcast(channel, event string, data any) {
	select {
	case h.broadcast <- &Message{Channel: channel, Event: event, Data: data}:
	case <-h.done:
	}
}

// ClientCount returns the number of clients subscribed to channel
func (h *Hub) ClientCount(channel string) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countRequest{channel: channel, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

// registerClient adds a client to its channel
func (h *Hub) registerClient(client *Client) {
	if h.channels[client.channel] == nil {
		h.channels[client.channel] = make(map[*Client]bool)
	}
	h.channels[client.channel][client] = true

	h.logger.Debug().
		Str("channel", client.channel).
		Int("clients", len(h.channels[client.channel])).
		Msg("client registered")
}

// unregisterClient removes a client from its channel
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.channels[client.channel]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	// Clean up empty channels
	if len(clients) == 0 {
		delete(h.channels, client.channel)
	}

	h.logger.Debug().
		Str("channel", client.channel).
		Int("clients", len(clients)).
		Msg("client unregistered")
}

// broadcastMessage delivers a message to the channel and to wildcard listeners
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Str("event", message.Event).Msg("failed to marshal broadcast message")
		return
	}

	targets := []string{message.Channel}
	if message.Channel != AllChannels {
		targets = append(targets, AllChannels)
	}

	for _, channel := range targets {
		for client := range h.channels[channel] {
			select {
			case client.send <- data:
			default:
				// Client's send channel is full, drop it
				h.unregisterClient(client)
			}
		}
	}
}

// readPump keeps the connection alive; clients only listen
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug().Err(err).Str("channel", c.channel).Msg("websocket closed")
			}
			return
		}
	}
}

// writePump sends each queued message as its own text frame
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
