package websocket

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"perfume-advisor-be/internal/pkg/logger"
)

const clusterChannel = "advisor_session_events"

// clusterMessage carries a shared reply to the other instances.
type clusterMessage struct {
	Origin    string          `json:"origin"`
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

// Hub tracks the open connections of every session. A session may be open in several
// tabs; shared replies reach all of them, on this instance and, through Redis, on others.
type Hub struct {
	id string

	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	local      chan delivery

	// requests for the number of connections of a session, answered by Run
	count chan countRequest

	// closed when Run returns
	done chan struct{}

	rdb    *redis.Client
	logger logger.ILogger
}

type countRequest struct {
	sessionID string
	reply     chan int
}

// delivery targets every connection of the session, or only target when it is set.
type delivery struct {
	sessionID string
	message   []byte
	target    *Client
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		id:         uuid.NewString(),
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		local:      make(chan delivery, 64),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
		rdb:        rdb,
		logger:     log,
	}
}

// Run owns the client map until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	remote := make(chan delivery, 64)
	if h.rdb != nil {
		go h.subscribeToRedis(ctx, remote)
	}

	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.clients {
				for _, client := range clients {
					close(client.Send)
				}
			}
			h.clients = make(map[string][]*Client)
			return

		case client := <-h.register:
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.logger.Info("WS", "Client registered", map[string]interface{}{
				"session_id":  client.SessionID,
				"connections": len(h.clients[client.SessionID]),
			})

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.local:
			h.fanOut(d)

		case d := <-remote:
			h.fanOut(d)

		case req := <-h.count:
			req.reply <- len(h.clients[req.sessionID])
		}
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		h.logger.Info("WS", "Session has no connections left", map[string]interface{}{"session_id": client.SessionID})
	}
}

// fanOut runs on the Run goroutine only, so a registered client's Send is never closed under it.
func (h *Hub) fanOut(d delivery) {
	for _, client := range h.clients[d.sessionID] {
		if d.target != nil && client != d.target {
			continue
		}
		select {
		case client.Send <- d.message:
		default:
			h.logger.Warn("WS", "Client send buffer full, dropping message", map[string]interface{}{"session_id": d.sessionID})
		}
	}
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.local <- d:
	default:
		h.logger.Warn("WS", "Hub queue full, dropping message", map[string]interface{}{"session_id": d.sessionID})
	}
}

// Send delivers message to every connection of the session, including those held by
// other instances when Redis is configured.
func (h *Hub) Send(sessionID string, message []byte) {
	h.enqueue(delivery{sessionID: sessionID, message: message})

	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(clusterMessage{Origin: h.id, SessionID: sessionID, Message: message})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
		h.logger.Warn("WS", "Failed to publish to cluster", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) deliver(client *Client, message []byte) {
	h.enqueue(delivery{sessionID: client.SessionID, message: message, target: client})
}

// Connections reports how many connections the session has on this instance.
func (h *Hub) Connections(sessionID string) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countRequest{sessionID: sessionID, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context, remote chan<- delivery) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("WS", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.id {
				continue
			}
			select {
			case remote <- delivery{sessionID: payload.SessionID, message: payload.Message}:
			case <-ctx.Done():
				return
			}
		}
	}
}
