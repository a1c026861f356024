package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"task_tracker/internal/domain"
	"task_tracker/internal/logger"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var connectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "ws_connected_clients",
	Help: "Websocket clients currently registered with the hub",
})

func init() {
	prometheus.MustRegister(connectedClients)
}

// Hub keeps the live websocket clients of each user and delivers task events
// to the owner's clients only.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	connectedClients.Inc()
	logger.Debug("ws client registered", "user_id", c.UserID.String(), "user_clients", len(set))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	c.close()
	connectedClients.Dec()
	logger.Debug("ws client unregistered", "user_id", c.UserID.String())
}

// Publish sends e to every client of e.UserID. A client whose buffer is full
// is dropped rather than blocking the caller.
func (h *Hub) Publish(ctx context.Context, e domain.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		logger.WithContext(ctx).Error("marshal ws event failed", "type", e.Type, "error", err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for c := range h.clients[e.UserID] {
		if !c.trySend(data) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	for _, c := range slow {
		logger.WithContext(ctx).Warn("dropping slow ws client", "user_id", c.UserID.String())
		h.removeLocked(c)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of live clients of userID.
func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Run periodically drops clients whose connection has already gone away,
// until ctx is done. On exit every remaining client is closed.
func (h *Hub) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case <-ticker.C:
			h.cleanupClosed()
		}
	}
}

func (h *Hub) cleanupClosed() {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for _, set := range h.clients {
		for c := range set {
			if c.isClosed() {
				h.removeLocked(c)
				removed++
			}
		}
	}
	if removed > 0 {
		logger.Info("cleaned up closed ws clients", "count", removed)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}
