package ordersync

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event names on the wire.
const (
	eventJoinOrder    = "joinOrder"
	eventGetOrder     = "getOrder"
	eventOrder        = "order"
	eventOrderUpdated = "orderUpdated"
)

// Redial backoff bounds. Package variables so tests can tighten them.
var (
	redialInitialWait = time.Second
	redialMaxWait     = 30 * time.Second
)

// frame is the JSON envelope every event travels in.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// wsTransport carries order events over a websocket. A single reader
// goroutine dispatches inbound events sequentially, which preserves the
// receipt-order merge semantics the channel relies on. When the connection
// drops the transport redials on its own with backoff and fires OnConnect
// again after every successful handshake, so the subscriber re-joins its
// room and requests a fresh snapshot. Only Close stops the redialing.
type wsTransport struct {
	url      string
	header   http.Header
	dialer   websocket.Dialer
	handlers EventHandlers

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	writeMu sync.Mutex
}

// WebsocketDialer returns a DialFunc connecting to the order events endpoint
// at url, authenticating the handshake with a bearer token.
func WebsocketDialer(url string) DialFunc {
	return func(token string, handlers EventHandlers) (Transport, error) {
		header := http.Header{}
		header.Set("Authorization", "Bearer "+token)

		t := &wsTransport{
			url:      url,
			header:   header,
			dialer:   websocket.Dialer{HandshakeTimeout: 10 * time.Second},
			handlers: handlers,
		}

		conn, _, err := t.dialer.Dial(url, header)
		if err != nil {
			if handlers.OnConnectError != nil {
				handlers.OnConnectError(err)
			}
			return nil, fmt.Errorf("dial order events: %w", err)
		}
		t.conn = conn
		go t.run(conn)

		if handlers.OnConnect != nil {
			handlers.OnConnect()
		}
		return t, nil
	}
}

// Emit sends one event frame over the current connection.
func (t *wsTransport) Emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}

	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()
	if closed || conn == nil {
		return errors.New("transport is closed")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return conn.WriteJSON(frame{Event: event, Data: data})
}

// Close shuts the connection down and stops the redial loop.
func (t *wsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}

func (t *wsTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// run reads frames off conn until it drops, then redials until Close.
func (t *wsTransport) run(conn *websocket.Conn) {
	for {
		err := t.readLoop(conn)
		if t.isClosed() {
			return
		}
		if t.handlers.OnDisconnect != nil {
			t.handlers.OnDisconnect(err)
		}

		conn = t.redial()
		if conn == nil {
			return
		}
		if t.handlers.OnConnect != nil {
			t.handlers.OnConnect()
		}
	}
}

// redial attempts handshakes with exponential backoff. It returns the fresh
// connection, or nil once Close is observed.
func (t *wsTransport) redial() *websocket.Conn {
	wait := redialInitialWait
	for {
		if t.isClosed() {
			return nil
		}

		conn, _, err := t.dialer.Dial(t.url, t.header)
		if err == nil {
			t.mu.Lock()
			if t.closed {
				t.mu.Unlock()
				_ = conn.Close()
				return nil
			}
			t.conn = conn
			t.mu.Unlock()
			return conn
		}

		if t.handlers.OnConnectError != nil {
			t.handlers.OnConnectError(err)
		}
		time.Sleep(wait)
		if wait < redialMaxWait {
			wait *= 2
		}
	}
}

func (t *wsTransport) readLoop(conn *websocket.Conn) error {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return err
		}

		switch f.Event {
		case eventOrder:
			var o Order
			if err := json.Unmarshal(f.Data, &o); err == nil && t.handlers.OnOrder != nil {
				t.handlers.OnOrder(o)
			}
		case eventOrderUpdated:
			var p StatusPatch
			if err := json.Unmarshal(f.Data, &p); err == nil && t.handlers.OnOrderUpdated != nil {
				t.handlers.OnOrderUpdated(p)
			}
		}
	}
}
