// Package ws provides the NewFlow push endpoint: a hub-and-spoke websocket
// layer that fans notification frames out to subscribed clients. Clients
// are auto-subscribed to their own user topic and may subscribe to further
// topics over the wire.
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/newflow/newflow/internal/notify"
	"github.com/newflow/newflow/internal/platform/auth"
)

// UserTopic is the topic a client is automatically subscribed to for
// notifications addressed to them.
func UserTopic(userID string) string { return "user:" + userID }

// BroadcastTopic carries system-wide announcements.
const BroadcastTopic = "broadcast"

// SendFunc handles a client-originated send_notification frame. The hub
// itself does not persist or authorize sends; wiring supplies the handler.
type SendFunc func(ctx context.Context, senderID, topic string, rec notify.Record)

// Client represents a single websocket connection.
type Client struct {
	ID     string
	UserID string
	Topics []string
	Send   chan []byte
	conn   *gorillawebsocket.Conn
}

// Hub is the central connection manager tracking clients and their topic
// subscriptions. All operations are thread-safe.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // topic -> set of clients
	all     map[*Client]struct{}

	log  zerolog.Logger
	send SendFunc
}

// NewHub creates a Hub ready to manage clients.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
		log:     log,
	}
}

// SetSendFunc installs the handler for client-originated sends.
func (h *Hub) SetSendFunc(fn SendFunc) { h.send = fn }

// Register adds a client and subscribes it to its initial topics.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	for _, topic := range client.Topics {
		if h.clients[topic] == nil {
			h.clients[topic] = make(map[*Client]struct{})
		}
		h.clients[topic][client] = struct{}{}
	}
}

// Unregister removes a client from the hub and all topic subscriptions, and
// closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	for _, topic := range client.Topics {
		if subscribers, ok := h.clients[topic]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.clients, topic)
			}
		}
	}

	delete(h.all, client)
	close(client.Send)
}

// Subscribe adds topics to an already-registered client.
func (h *Hub) Subscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range topics {
		if h.clients[topic] == nil {
			h.clients[topic] = make(map[*Client]struct{})
		}
		h.clients[topic][client] = struct{}{}
	}
	client.Topics = append(client.Topics, topics...)
}

// Unsubscribe removes topics from an already-registered client.
func (h *Hub) Unsubscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	removeSet := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		removeSet[t] = struct{}{}
	}

	for _, topic := range topics {
		if subscribers, ok := h.clients[topic]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.clients, topic)
			}
		}
	}

	remaining := make([]string, 0, len(client.Topics))
	for _, t := range client.Topics {
		if _, rm := removeSet[t]; !rm {
			remaining = append(remaining, t)
		}
	}
	client.Topics = remaining
}

// ProcessFrame handles an inbound client frame.
func (h *Hub) ProcessFrame(ctx context.Context, client *Client, f *notify.Frame) {
	switch f.Type {
	case notify.FrameSubscribe:
		h.Subscribe(client, f.Topics)
	case notify.FrameUnsubscribe:
		h.Unsubscribe(client, f.Topics)
	case notify.FrameSend:
		if h.send == nil {
			h.log.Warn().Msg("send_notification received but no send handler installed")
			return
		}
		topic := f.Topic
		if topic == "" {
			topic = BroadcastTopic
		}
		h.send(ctx, client.UserID, topic, *f.Notification)
	default:
		h.log.Warn().Str("type", string(f.Type)).Msg("dropping unexpected client frame type")
	}
}

// PushNotification fans a single notification out to a topic.
func (h *Hub) PushNotification(topic string, rec notify.Record) {
	h.push(topic, &notify.Frame{Type: notify.FrameNotification, Notification: &rec})
}

// PushBulk fans a batch of notifications out to a topic.
func (h *Hub) PushBulk(topic string, recs []notify.Record) {
	h.push(topic, &notify.Frame{Type: notify.FrameBulk, Notifications: recs})
}

// PushRead tells a topic's subscribers that a notification was read.
func (h *Hub) PushRead(topic, id string) {
	h.push(topic, &notify.Frame{Type: notify.FrameRead, ID: id})
}

// PushDeleted tells a topic's subscribers that a notification was removed.
func (h *Hub) PushDeleted(topic, id string) {
	h.push(topic, &notify.Frame{Type: notify.FrameDeleted, ID: id})
}

func (h *Hub) push(topic string, f *notify.Frame) {
	data, err := f.Encode()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to encode push frame")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[topic] {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// TopicCount returns the number of clients subscribed to a topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// ---------------------------------------------------------------------------
// HTTP handler
// ---------------------------------------------------------------------------

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler handles HTTP-to-websocket upgrades and frame routing.
type Handler struct {
	hub *Hub
	log zerolog.Logger
}

// NewHandler creates a handler bound to the given Hub.
func NewHandler(hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, log: log}
}

// RegisterRoutes registers the push endpoint on the provided group.
func (wh *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws/notifications", wh.HandleConnect)
}

// HandleConnect upgrades the connection, registers the client with its user
// topic, and starts the read/write pumps.
func (wh *Handler) HandleConnect(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	topics := []string{BroadcastTopic}
	if userID != "" {
		topics = append(topics, UserTopic(userID))
	}

	client := &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Topics: topics,
		Send:   make(chan []byte, 256),
		conn:   conn,
	}

	wh.hub.Register(client)

	go wh.writePump(client, conn)
	go wh.readPump(client, conn)

	return nil
}

func (wh *Handler) readPump(client *Client, conn *gorillawebsocket.Conn) {
	defer func() {
		wh.hub.Unregister(client)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		f, err := notify.DecodeFrame(data)
		if err != nil {
			wh.log.Warn().Err(err).Str("client", client.ID).Msg("dropping malformed client frame")
			continue
		}

		wh.hub.ProcessFrame(context.Background(), client, f)
	}
}

func (wh *Handler) writePump(client *Client, conn *gorillawebsocket.Conn) {
	defer conn.Close()

	for data := range client.Send {
		if err := conn.WriteMessage(gorillawebsocket.TextMessage, data); err != nil {
			break
		}
	}
}
