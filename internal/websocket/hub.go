package paymentws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/events"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	websocket "github.com/gofiber/contrib/websocket"
)

const (
	clientBufferSize    = 16
	broadcastBufferSize = 64
)

// Hub pushes payment outcomes to every open connection of the paying account.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	account string
	send    chan []byte
}

type Message struct {
	Type    string                      `json:"type"`
	Account string                      `json:"-"`
	Payment *events.PaymentOutcomeEvent `json:"payment"`
	SentAt  string                      `json:"sent_at"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, broadcastBufferSize),
		done:       make(chan struct{}),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, account string) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		account: strings.TrimSpace(account),
		send:    make(chan []byte, clientBufferSize),
	}
}

// Run owns the client registry until ctx is cancelled, then closes every
// remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for account, set := range h.clients {
				for client := range set {
					close(client.send)
				}
				delete(h.clients, account)
			}
			return
		case client := <-h.register:
			set, ok := h.clients[client.account]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.account] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			h.remove(client)
		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// Register returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PublishPaymentOutcome queues the outcome for the order's account. Outcomes
// without an account, or arriving while the queue is full, are dropped.
func (h *Hub) PublishPaymentOutcome(result models.PaymentResult) error {
	event := events.NewPaymentOutcomeEvent(result, time.Now())
	account := strings.TrimSpace(event.Account)
	if account == "" {
		return nil
	}

	select {
	case h.broadcast <- &Message{
		Type:    event.EventType,
		Account: account,
		Payment: &event,
		SentAt:  formatTimestamp(time.Now()),
	}:
	default:
		slog.Warn("Payment push queue full, dropping outcome", "order_id", result.OrderID, "account", account)
	}
	return nil
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.account]
	if !ok {
		return
	}
	if _, exists := set[client]; exists {
		delete(set, client)
		close(client.send)
	}
	if len(set) == 0 {
		delete(h.clients, client.account)
	}
}

func (h *Hub) deliver(message *Message) {
	encoded, err := json.Marshal(message)
	if err != nil {
		slog.Error("Payment hub encode message", "error", err)
		return
	}

	set, ok := h.clients[message.Account]
	if !ok {
		return
	}
	for client := range set {
		select {
		case client.send <- encoded:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, message.Account)
	}
}

// ReadPump drains client frames until the connection closes; the socket is
// push-only.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func formatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}
