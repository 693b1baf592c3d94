// Package ws implements the live order events endpoint. Tracking clients
// join a per-order room, request a full snapshot and then receive status
// patches as the order moves through its lifecycle.
package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/botica/internal/middleware"
	"github.com/example/botica/internal/models"
)

// Wire event names, shared with the ordersync client.
const (
	eventJoinOrder    = "joinOrder"
	eventGetOrder     = "getOrder"
	eventOrder        = "order"
	eventOrderUpdated = "orderUpdated"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// client is one live connection. Writes are serialized per connection.
type client struct {
	conn      *websocket.Conn
	userID    uuid.UUID
	isCourier bool

	writeMu sync.Mutex
}

func (c *client) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(frame{Event: event, Data: data})
}

// Hub tracks which connections are watching which order and pushes updates
// into the right rooms.
type Hub struct {
	db *gorm.DB

	mu    sync.Mutex
	rooms map[string]map[*client]bool
}

// NewHub builds a hub reading order snapshots from db.
func NewHub(db *gorm.DB) *Hub {
	return &Hub{db: db, rooms: make(map[string]map[*client]bool)}
}

// Handler returns the fiber handler for the websocket endpoint. It must be
// mounted behind AuthMiddleware so the handshake already carries the user.
func (h *Hub) Handler() func(*websocket.Conn) {
	return h.serve
}

func (h *Hub) serve(conn *websocket.Conn) {
	userID, _ := conn.Locals(middleware.UserContextKey).(uuid.UUID)
	isCourier, _ := conn.Locals(middleware.CourierContextKey).(bool)
	cl := &client{conn: conn, userID: userID, isCourier: isCourier}
	defer h.drop(cl)

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}

		var orderID string
		if err := json.Unmarshal(f.Data, &orderID); err != nil {
			log.Printf("[WS] malformed %s payload: %v", f.Event, err)
			continue
		}

		switch f.Event {
		case eventJoinOrder:
			h.join(cl, orderID)
		case eventGetOrder:
			h.sendSnapshot(cl, orderID)
		}
	}
}

// join subscribes a connection to an order's room after checking the order
// is visible to the user. One connection may sit in several rooms; each
// subscriber filters by id on its own end.
func (h *Hub) join(cl *client, orderID string) {
	if !h.canWatch(cl, orderID) {
		log.Printf("[WS] user %s denied room %s", cl.userID, orderID)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[orderID]
	if !ok {
		room = make(map[*client]bool)
		h.rooms[orderID] = room
	}
	room[cl] = true
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	for id, room := range h.rooms {
		delete(room, cl)
		if len(room) == 0 {
			delete(h.rooms, id)
		}
	}
	h.mu.Unlock()
	_ = cl.conn.Close()
}

func (h *Hub) canWatch(cl *client, orderID string) bool {
	if cl.isCourier {
		return true
	}
	id, err := uuid.Parse(orderID)
	if err != nil {
		return false
	}
	var count int64
	if err := h.db.Model(&models.Order{}).
		Where("id = ? AND user_id = ?", id, cl.userID).
		Count(&count).Error; err != nil {
		log.Printf("[WS] room check failed: %v", err)
		return false
	}
	return count > 0
}

func (h *Hub) sendSnapshot(cl *client, orderID string) {
	if !h.canWatch(cl, orderID) {
		return
	}

	id, err := uuid.Parse(orderID)
	if err != nil {
		return
	}

	var order models.Order
	if err := h.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		log.Printf("[WS] snapshot load failed for %s: %v", orderID, err)
		return
	}

	if err := cl.send(eventOrder, SnapshotFromOrder(order)); err != nil {
		log.Printf("[WS] snapshot send failed: %v", err)
	}
}

// BroadcastStatus pushes a status patch to everyone in the order's room.
func (h *Hub) BroadcastStatus(orderID, status string) {
	h.broadcast(orderID, eventOrderUpdated, StatusPatch{OrderID: orderID, Status: status})
}

// BroadcastOrder pushes a full snapshot to everyone in the order's room.
func (h *Hub) BroadcastOrder(order models.Order) {
	h.broadcast(order.ID.String(), eventOrder, SnapshotFromOrder(order))
}

func (h *Hub) broadcast(orderID, event string, payload any) {
	h.mu.Lock()
	members := make([]*client, 0, len(h.rooms[orderID]))
	for cl := range h.rooms[orderID] {
		members = append(members, cl)
	}
	h.mu.Unlock()

	for _, cl := range members {
		if err := cl.send(event, payload); err != nil {
			log.Printf("[WS] broadcast to room %s failed: %v", orderID, err)
		}
	}
}
