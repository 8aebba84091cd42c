package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/pkg/metrics"
)

// Hub доставляет события слотов открытым соединениям группы.
// Отправка неблокирующая: если очередь клиента заполнена, событие теряется.
type Hub struct {
	members GroupMembers
	metrics *metrics.Metrics
	logger  Logger

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(members GroupMembers, m *metrics.Metrics, logger Logger) *Hub {
	return &Hub{
		members: members,
		metrics: m,
		logger:  logger,
		clients: make(map[string]*client),
	}
}

// Notify реализует slots.Notifier
func (h *Hub) Notify(_ context.Context, group domain.GroupKey, event domain.SlotEvent) {
	frame, err := json.Marshal(newEventFrame(event))
	if err != nil {
		h.logger.Error("Hub: failed to encode %s event: %v", event.Type, err)
		return
	}

	for _, connID := range h.members.Members(group) {
		c := h.client(connID)
		if c == nil {
			continue
		}
		if !c.trySend(frame) {
			h.metrics.EventDropped()
			h.logger.Warn("Hub: dropped %s event for conn=%s, send buffer full", event.Type, connID)
		}
	}
}

// Len число зарегистрированных соединений
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) unregister(connID string) {
	h.mu.Lock()
	delete(h.clients, connID)
	h.mu.Unlock()
}

func (h *Hub) client(connID string) *client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[connID]
}
