package ordersync

import (
	"errors"
	"log"
	"sync"
)

// AuthTokenKey is the secure-store entry holding the bearer token used to
// authenticate the event connection.
const AuthTokenKey = "auth_token"

// ErrAuthTokenMissing means no bearer token was available; the connection is
// not attempted and the consumer simply sees no live data.
var ErrAuthTokenMissing = errors.New("no auth token available for order sync")

// TokenStore reads secrets from the host application's secure storage.
type TokenStore interface {
	Get(name string) (string, bool)
}

// EventHandlers are the callbacks a transport delivers events through. All
// callbacks are invoked sequentially from the transport's dispatch goroutine.
type EventHandlers struct {
	OnConnect      func()
	OnDisconnect   func(err error)
	OnConnectError func(err error)
	OnOrder        func(Order)
	OnOrderUpdated func(StatusPatch)
}

// Transport is one live bidirectional connection to the order events backend.
type Transport interface {
	Emit(event string, payload any) error
	Close() error
}

// DialFunc opens a transport authenticated with the given bearer token.
type DialFunc func(token string, handlers EventHandlers) (Transport, error)

// State names where the channel is in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateJoined     State = "joined"
	StateClosed     State = "closed"
)

// Channel maintains an up-to-date mirror of exactly one order over a live
// event connection. Each subscribing screen owns its own Channel; there is no
// shared connection between screens, each mirror converges independently.
type Channel struct {
	dial   DialFunc
	tokens TokenStore

	mu          sync.Mutex
	state       State
	orderID     string
	mirror      *Order
	onUpdate    func(Order)
	transport   Transport
	pendingJoin bool
	gen         int
}

// NewChannel builds an unconnected channel.
func NewChannel(dial DialFunc, tokens TokenStore) *Channel {
	return &Channel{dial: dial, tokens: tokens, state: StateIdle}
}

// State reports the channel lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the mirrored order, or nil before the first event lands.
func (c *Channel) Current() *Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mirror == nil {
		return nil
	}
	cp := *c.mirror
	return &cp
}

// Subscribe opens a connection, joins the order's room and requests a full
// snapshot. onUpdate fires after every merge with a copy of the mirror. Any
// previous subscription on this channel is torn down synchronously first, so
// an event tagged with the old order id can never reach the new subscriber.
// The returned function unsubscribes; calling it more than once is harmless.
func (c *Channel) Subscribe(orderID string, onUpdate func(Order)) (func(), error) {
	if orderID == "" {
		return nil, errors.New("order id is required")
	}

	c.mu.Lock()
	c.teardownLocked()

	token, ok := c.tokens.Get(AuthTokenKey)
	if !ok || token == "" {
		c.state = StateIdle
		c.mu.Unlock()
		log.Printf("[OrderSync] %v", ErrAuthTokenMissing)
		return nil, ErrAuthTokenMissing
	}

	c.gen++
	gen := c.gen
	c.state = StateConnecting
	c.orderID = orderID
	c.mirror = nil
	c.onUpdate = onUpdate
	c.mu.Unlock()

	handlers := EventHandlers{
		OnConnect:      func() { c.joined(gen) },
		OnDisconnect: func(err error) {
			log.Printf("[OrderSync] disconnected: %v", err)
			c.reconnecting(gen)
		},
		OnConnectError: func(err error) { log.Printf("[OrderSync] connect error: %v", err) },
		OnOrder:        func(o Order) { c.applySnapshot(gen, o) },
		OnOrderUpdated: func(p StatusPatch) { c.applyPatch(gen, p) },
	}

	transport, err := c.dial(token, handlers)
	if err != nil {
		// The transport layer retries on its own; a failed dial here means
		// the subscription could not start at all.
		c.mu.Lock()
		if c.gen == gen {
			c.state = StateIdle
		}
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	if c.gen != gen {
		// A newer Subscribe or Unsubscribe won the race.
		c.mu.Unlock()
		_ = transport.Close()
		return func() {}, nil
	}
	c.transport = transport
	pending := c.pendingJoin
	c.pendingJoin = false
	c.mu.Unlock()

	if pending {
		// The transport connected before Subscribe finished wiring it up.
		c.emitJoin(transport, orderID)
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			c.mu.Lock()
			if c.gen == gen {
				c.teardownLocked()
			}
			c.mu.Unlock()
		})
	}
	return unsubscribe, nil
}

// Unsubscribe tears down the active subscription, if any.
func (c *Channel) Unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// teardownLocked detaches handlers and closes the transport. Bumping gen
// makes every callback captured by the old subscription a no-op.
func (c *Channel) teardownLocked() {
	c.gen++
	if c.transport != nil {
		_ = c.transport.Close()
		c.transport = nil
	}
	c.onUpdate = nil
	c.mirror = nil
	c.orderID = ""
	c.pendingJoin = false
	if c.state != StateIdle {
		c.state = StateClosed
	}
}

// reconnecting reflects a dropped connection while the transport redials.
// The mirror is kept; the next OnConnect re-joins and refreshes it.
func (c *Channel) reconnecting(gen int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.state = StateConnecting
}

// joined runs on transport connect: join the order room and ask for the full
// snapshot. Reconnects repeat both, there are no resume semantics.
func (c *Channel) joined(gen int) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.state = StateJoined
	transport := c.transport
	orderID := c.orderID
	if transport == nil {
		// Connect fired during dialing; Subscribe emits once it has the
		// transport in hand.
		c.pendingJoin = true
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.emitJoin(transport, orderID)
}

func (c *Channel) emitJoin(transport Transport, orderID string) {
	if err := transport.Emit("joinOrder", orderID); err != nil {
		log.Printf("[OrderSync] joinOrder emit failed: %v", err)
		return
	}
	if err := transport.Emit("getOrder", orderID); err != nil {
		log.Printf("[OrderSync] getOrder emit failed: %v", err)
	}
}

// applySnapshot replaces the mirror wholesale with a matching full order.
func (c *Channel) applySnapshot(gen int, o Order) {
	c.mu.Lock()
	if c.gen != gen || o.ID != c.orderID {
		c.mu.Unlock()
		return
	}
	snapshot := o
	c.mirror = &snapshot
	notify := c.onUpdate
	c.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
}

// applyPatch merges only the status into the mirror, creating a minimal
// placeholder when no snapshot has arrived yet. Arrival order wins; there is
// no timestamp comparison.
func (c *Channel) applyPatch(gen int, p StatusPatch) {
	c.mu.Lock()
	if c.gen != gen || p.OrderID != c.orderID {
		c.mu.Unlock()
		return
	}
	if c.mirror == nil {
		c.mirror = &Order{ID: p.OrderID, Status: p.Status}
	} else {
		c.mirror.Status = p.Status
	}
	merged := *c.mirror
	notify := c.onUpdate
	c.mu.Unlock()

	if notify != nil {
		notify(merged)
	}
}
