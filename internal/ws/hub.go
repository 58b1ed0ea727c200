package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub manages connected clients and named broadcast groups, one group
// per room. It implements room.Emitter: the coordinator addresses
// groups and connection ids, never websocket connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // connID -> client
	groups  map[string]map[string]*Client // roomID -> connID -> client
	log     *logrus.Entry
}

// NewHub creates an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
		log:     logger.WithField("component", "hub"),
	}
}

// register adds a connected client.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

// unregister removes a client and any group memberships it still holds,
// then closes its outbound queue.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	for roomID, group := range h.groups {
		delete(group, c.id)
		if len(group) == 0 {
			delete(h.groups, roomID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// JoinGroup adds a connection to a room's broadcast group.
func (h *Hub) JoinGroup(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	if h.groups[roomID] == nil {
		h.groups[roomID] = make(map[string]*Client)
	}
	h.groups[roomID][connID] = c
}

// LeaveGroup removes a connection from a room's broadcast group.
func (h *Hub) LeaveGroup(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group, ok := h.groups[roomID]
	if !ok {
		return
	}
	delete(group, connID)
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

// ToRoom broadcasts an event to every member of a room's group. The
// frame is marshaled once, at call time, so the payload is fixed before
// the caller releases its room lock.
func (h *Hub) ToRoom(roomID, event string, payload any) {
	msg, err := marshalFrame(event, payload)
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("Failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.groups[roomID] {
		c.enqueue(msg)
	}
}

// ToConn sends an event to a single connection.
func (h *Hub) ToConn(connID, event string, payload any) {
	msg, err := marshalFrame(event, payload)
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("Failed to marshal message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[connID]; ok {
		c.enqueue(msg)
	}
}

func marshalFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
