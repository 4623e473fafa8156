package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"persona-chat/internal/models"
)

// InstructionChannel is the Redis channel carrying instruction updates between replicas.
const InstructionChannel = "instruction_updates"

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type instructionStore interface {
	Get() string
	Set(v string) string
}

// sendBuffer bounds the updates queued for one client before it is skipped.
const sendBuffer = 16

// client owns a send queue drained by its own write pump; gorilla
// connections allow one concurrent writer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes instruction updates to connected browsers. With a Redis client
// it also publishes updates to other replicas and applies theirs locally.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*client]struct{}
	store       instructionStore
	redisClient *redis.Client
	origin      string
	logger      *zap.Logger
}

func NewHub(store instructionStore, redisClient *redis.Client, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:     make(map[*client]struct{}),
		store:       store,
		redisClient: redisClient,
		origin:      uuid.NewString(),
		logger:      logger,
	}
}

// Origin identifies this process in published updates.
func (h *Hub) Origin() string {
	return h.origin
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	// Greet with the current instruction so a fresh page starts in sync
	if data, err := h.encode(h.store.Get()); err == nil {
		c.send <- data
	}
	h.register(c)

	go h.writePump(c)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregister(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("WebSocket write failed", zap.Error(err))
			c.conn.Close()
			return
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("WebSocket connected", zap.Int("total", total))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	c.conn.Close()
	h.logger.Info("WebSocket disconnected", zap.Int("total", total))
}

// ClientCount reports the number of open websocket connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishInstruction broadcasts a locally accepted instruction write to this
// replica's clients and, when Redis is configured, to the other replicas.
func (h *Hub) PublishInstruction(ctx context.Context, instruction string) {
	data, err := h.encode(instruction)
	if err != nil {
		h.logger.Error("failed to encode instruction update", zap.Error(err))
		return
	}

	h.broadcast(data)

	if h.redisClient == nil {
		return
	}
	if err := h.redisClient.Publish(ctx, InstructionChannel, string(data)).Err(); err != nil {
		h.logger.Error("failed to publish instruction update", zap.Error(err))
	}
}

// Run applies updates published by other replicas until ctx is cancelled.
// It returns immediately when no Redis client is configured.
func (h *Hub) Run(ctx context.Context, pubsubClient *redis.Client) error {
	if pubsubClient == nil {
		return nil
	}

	pubsub := pubsubClient.Subscribe(ctx, InstructionChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			h.applyRemote([]byte(msg.Payload))
		}
	}
}

func (h *Hub) applyRemote(data []byte) {
	var msg struct {
		Type    string                   `json:"type"`
		Payload models.InstructionUpdate `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Warn("ignoring malformed instruction update", zap.Error(err))
		return
	}
	if msg.Type != models.WSInstructionUpdated || msg.Payload.Origin == h.origin {
		return
	}

	h.store.Set(msg.Payload.Instruction)
	h.logger.Info("instruction updated by replica", zap.String("origin", msg.Payload.Origin))
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("WebSocket client too slow, update dropped")
		}
	}
}

func (h *Hub) encode(instruction string) ([]byte, error) {
	return json.Marshal(models.WSMessage{
		Type: models.WSInstructionUpdated,
		Payload: models.InstructionUpdate{
			Instruction: instruction,
			Origin:      h.origin,
		},
	})
}

// Close drops every open connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}
