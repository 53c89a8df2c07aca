package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"chatpulse/internal/pkg/logger"
	"chatpulse/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisChannel carries live events between instances.
const RedisChannel = "live_events"

type clusterEnvelope struct {
	Origin     string          `json:"origin"`
	Identifier string          `json:"identifier"`
	Message    json.RawMessage `json:"message"`
}

type Hub struct {
	// Registered clients: identifier -> every tab watching it
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run owns client registration until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Identifier] = append(h.clients[client.Identifier], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"identifier": client.Identifier,
				"client_id":  client.ID,
			})

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, clients := range h.clients {
				for _, c := range clients {
					close(c.Send)
				}
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// join and leave give up once Run has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.Identifier]
	for i, c := range clients {
		if c == client {
			h.clients[client.Identifier] = append(clients[:i:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.Identifier]) == 0 {
		delete(h.clients, client.Identifier)
		h.logger.Info("Hub", "Identifier has no live clients", map[string]interface{}{"identifier": client.Identifier})
	}
}

// ClientCount reports how many clients watch identifier on this instance.
func (h *Hub) ClientCount(identifier string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[identifier])
}

// Deliver sends event to local clients of its identifier and to other instances.
func (h *Hub) Deliver(event events.LiveEvent) {
	data, err := event.Marshal()
	if err != nil {
		h.logger.Error("Hub", "Failed to encode live event", map[string]interface{}{"error": err.Error()})
		return
	}

	h.sendLocal(event.Identifier, data)

	if h.rdb != nil {
		payload, err := encodeEnvelope(h.instanceID, event.Identifier, data)
		if err != nil {
			h.logger.Error("Hub", "Failed to encode cluster envelope", map[string]interface{}{"error": err.Error()})
			return
		}
		if err := h.rdb.Publish(context.Background(), RedisChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish to redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

func encodeEnvelope(origin, identifier string, data []byte) ([]byte, error) {
	return json.Marshal(clusterEnvelope{
		Origin:     origin,
		Identifier: identifier,
		Message:    data,
	})
}

func (h *Hub) sendLocal(identifier string, data []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, client := range h.clients[identifier] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{
			"identifier": identifier,
			"client_id":  client.ID,
		})
		go h.leave(client)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, RedisChannel)
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
			var env clusterEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if env.Origin == h.instanceID {
				continue
			}
			h.sendLocal(env.Identifier, env.Message)
		}
	}
}
