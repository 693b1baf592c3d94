package ordersync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens struct {
	token string
}

func (s *stubTokens) Get(name string) (string, bool) {
	if name != AuthTokenKey || s.token == "" {
		return "", false
	}
	return s.token, true
}

type fakeTransport struct {
	handlers EventHandlers
	emitted  []string
	closed   bool
}

func (f *fakeTransport) Emit(event string, payload any) error {
	f.emitted = append(f.emitted, event)
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

// fakeDialer records every opened transport and fires OnConnect immediately,
// like the websocket dialer does after a successful handshake.
type fakeDialer struct {
	transports []*fakeTransport
	lastToken  string
	err        error
}

func (d *fakeDialer) dial(token string, handlers EventHandlers) (Transport, error) {
	d.lastToken = token
	if d.err != nil {
		return nil, d.err
	}
	t := &fakeTransport{handlers: handlers}
	d.transports = append(d.transports, t)
	handlers.OnConnect()
	return t, nil
}

func newTestChannel() (*Channel, *fakeDialer) {
	dialer := &fakeDialer{}
	ch := NewChannel(dialer.dial, &stubTokens{token: "tok-1"})
	return ch, dialer
}

func TestSubscribeJoinsRoomAndRequestsSnapshot(t *testing.T) {
	ch, dialer := newTestChannel()

	unsub, err := ch.Subscribe("A", func(Order) {})
	require.NoError(t, err)
	defer unsub()

	require.Len(t, dialer.transports, 1)
	assert.Equal(t, "tok-1", dialer.lastToken)
	assert.Equal(t, []string{"joinOrder", "getOrder"}, dialer.transports[0].emitted)
	assert.Equal(t, StateJoined, ch.State())
}

func TestSubscribeWithoutTokenDoesNotConnect(t *testing.T) {
	dialer := &fakeDialer{}
	ch := NewChannel(dialer.dial, &stubTokens{})

	_, err := ch.Subscribe("A", func(Order) {})

	require.ErrorIs(t, err, ErrAuthTokenMissing)
	assert.Empty(t, dialer.transports)
	assert.Equal(t, StateIdle, ch.State())
}

func TestSnapshotThenPatchMerges(t *testing.T) {
	ch, dialer := newTestChannel()

	var updates []Order
	_, err := ch.Subscribe("A", func(o Order) { updates = append(updates, o) })
	require.NoError(t, err)

	h := dialer.transports[0].handlers
	h.OnOrder(Order{ID: "A", Status: StatusRequested, TotalPrice: 100})
	h.OnOrderUpdated(StatusPatch{OrderID: "A", Status: StatusApproved})

	require.Len(t, updates, 2)
	merged := updates[1]
	assert.Equal(t, "A", merged.ID)
	assert.Equal(t, StatusApproved, merged.Status)
	assert.InDelta(t, 100, merged.TotalPrice, 1e-6)
}

func TestPatchBeforeSnapshotCreatesPlaceholder(t *testing.T) {
	ch, dialer := newTestChannel()

	var last Order
	_, err := ch.Subscribe("A", func(o Order) { last = o })
	require.NoError(t, err)

	dialer.transports[0].handlers.OnOrderUpdated(StatusPatch{OrderID: "A", Status: StatusInProgress})

	assert.Equal(t, Order{ID: "A", Status: StatusInProgress}, last)
}

func TestLaterSnapshotReplacesWholesale(t *testing.T) {
	ch, dialer := newTestChannel()

	_, err := ch.Subscribe("A", func(Order) {})
	require.NoError(t, err)

	h := dialer.transports[0].handlers
	h.OnOrderUpdated(StatusPatch{OrderID: "A", Status: StatusApproved})
	h.OnOrder(Order{ID: "A", Status: StatusRequested, TotalPrice: 250})

	// The patch is not reapplied on top of the newer snapshot.
	current := ch.Current()
	require.NotNil(t, current)
	assert.Equal(t, StatusRequested, current.Status)
	assert.InDelta(t, 250, current.TotalPrice, 1e-6)
}

func TestEventsForOtherOrdersAreIgnored(t *testing.T) {
	ch, dialer := newTestChannel()

	var updates int
	_, err := ch.Subscribe("A", func(Order) { updates++ })
	require.NoError(t, err)

	h := dialer.transports[0].handlers
	h.OnOrder(Order{ID: "B", Status: StatusRequested})
	h.OnOrderUpdated(StatusPatch{OrderID: "B", Status: StatusCanceled})

	assert.Zero(t, updates)
	assert.Nil(t, ch.Current())
}

func TestResubscribeNeverDeliversOldOrderEvents(t *testing.T) {
	ch, dialer := newTestChannel()

	_, err := ch.Subscribe("A", func(Order) {})
	require.NoError(t, err)
	oldHandlers := dialer.transports[0].handlers

	var updates []Order
	_, err = ch.Subscribe("B", func(o Order) { updates = append(updates, o) })
	require.NoError(t, err)

	// The first transport was closed before the second opened.
	assert.True(t, dialer.transports[0].closed)

	// Late events from the torn-down subscription are dropped entirely.
	oldHandlers.OnOrder(Order{ID: "A", Status: StatusCompleted})
	oldHandlers.OnOrderUpdated(StatusPatch{OrderID: "B", Status: StatusCanceled})
	assert.Empty(t, updates)

	dialer.transports[1].handlers.OnOrder(Order{ID: "B", Status: StatusRequested})
	require.Len(t, updates, 1)
	assert.Equal(t, "B", updates[0].ID)
}

func TestUnsubscribeClosesTransport(t *testing.T) {
	ch, dialer := newTestChannel()

	unsub, err := ch.Subscribe("A", func(Order) {})
	require.NoError(t, err)

	unsub()
	assert.True(t, dialer.transports[0].closed)
	assert.Equal(t, StateClosed, ch.State())

	// Idempotent.
	unsub()
	assert.Len(t, dialer.transports, 1)
}

func TestDialFailureSurfacesError(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("handshake refused")}
	ch := NewChannel(dialer.dial, &stubTokens{token: "tok-1"})

	_, err := ch.Subscribe("A", func(Order) {})
	require.Error(t, err)
	assert.Equal(t, StateIdle, ch.State())
}

func TestReconnectRejoinsAndRefreshes(t *testing.T) {
	ch, dialer := newTestChannel()

	_, err := ch.Subscribe("A", func(Order) {})
	require.NoError(t, err)

	tr := dialer.transports[0]
	require.Equal(t, []string{"joinOrder", "getOrder"}, tr.emitted)

	// A dropped connection is non-fatal; the transport keeps redialing and
	// the channel reflects that while it waits.
	tr.handlers.OnDisconnect(errors.New("connection reset"))
	assert.Equal(t, StateConnecting, ch.State())

	// The repeated connect re-joins the room and asks for a fresh snapshot.
	tr.handlers.OnConnect()
	assert.Equal(t, StateJoined, ch.State())
	assert.Equal(t, []string{"joinOrder", "getOrder", "joinOrder", "getOrder"}, tr.emitted)
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCanceled.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.False(t, StatusRequested.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}
