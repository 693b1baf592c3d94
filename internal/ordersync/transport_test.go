package ordersync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsocketTransportRedialsAfterDrop(t *testing.T) {
	prev := redialInitialWait
	redialInitialWait = 10 * time.Millisecond
	defer func() { redialInitialWait = prev }()

	var dials int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if atomic.AddInt32(&dials, 1) == 1 {
			// The first connection dies right after the handshake.
			conn.Close()
			return
		}
		defer conn.Close()
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			if f.Event != eventGetOrder {
				continue
			}
			data, err := json.Marshal(Order{ID: "ord-1", Status: StatusApproved})
			require.NoError(t, err)
			if err := conn.WriteJSON(frame{Event: eventOrder, Data: data}); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	updates := make(chan Order, 16)
	ch := NewChannel(WebsocketDialer(url), &stubTokens{token: "tok-1"})

	unsubscribe, err := ch.Subscribe("ord-1", func(o Order) { updates <- o })
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case o := <-updates:
		assert.Equal(t, "ord-1", o.ID)
		assert.Equal(t, StatusApproved, o.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot arrived after the reconnect")
	}

	assert.Equal(t, StateJoined, ch.State())
	assert.GreaterOrEqual(t, atomic.LoadInt32(&dials), int32(2))
}
