package ws

import (
	"encoding/json"
	"sync"

	"sales_crm/pkg/logger"
)

// Hub — реестр комнат: именованных групп активных соединений.
// Вся рассылка в реальном времени идет через него; долговременного
// состояния у него нет, при падении процесса клиенты переподключаются.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[room]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[room] = clients
	}
	clients[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(room, c)
}

// LeaveAll убирает соединение из всех комнат (при разрыве)
func (h *Hub) LeaveAll(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range c.rooms {
		h.leaveLocked(room, c)
	}
}

func (h *Hub) leaveLocked(room string, c *Client) {
	if clients, ok := h.rooms[room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

// InRoom сообщает, находится ли соединение в комнате
func (h *Hub) InRoom(room string, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][c]
	return ok
}

// Occupants возвращает число соединений в комнате
func (h *Hub) Occupants(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Broadcast шлет событие всем соединениям комнаты (включая отправителя)
func (h *Hub) Broadcast(room, event string, data any) {
	h.broadcast(room, nil, event, data)
}

// BroadcastExcept шлет событие всем в комнате, кроме указанного соединения
func (h *Hub) BroadcastExcept(room string, except *Client, event string, data any) {
	h.broadcast(room, except, event, data)
}

func (h *Hub) broadcast(room string, except *Client, event string, data any) {
	payload, err := json.Marshal(outEnvelope{Event: event, Data: data})
	if err != nil {
		h.log.Error("Failed to marshal broadcast", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		if c == except {
			continue
		}
		c.enqueue(payload)
	}
}
