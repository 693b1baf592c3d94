package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/botica/internal/checkout"
)

func newLoggedInSession(t *testing.T, handler http.Handler) (*Session, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "tok-test"})
	})
	mux.Handle("/", handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	session := NewSession(srv.URL)
	require.NoError(t, session.Login(context.Background(), "04141234567", "secret"))
	return session, srv
}

func TestSessionTokenStore(t *testing.T) {
	session, _ := newLoggedInSession(t, http.NotFoundHandler())

	token, ok := session.Get(AuthTokenName)
	require.True(t, ok)
	assert.Equal(t, "tok-test", token)

	_, ok = session.Get("something_else")
	assert.False(t, ok)

	session.Logout()
	_, ok = session.Get(AuthTokenName)
	assert.False(t, ok)
}

func TestSessionRequiresToken(t *testing.T) {
	session := NewSession("http://127.0.0.1:1")
	client := NewOrderClient(session)

	_, err := client.CreateOrder(context.Background(), checkout.OrderDraft{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestOrderClientCreateOrder(t *testing.T) {
	var gotAuth string
	var gotDraft checkout.OrderDraft

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDraft))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": "order-9"},
		})
	})

	session, _ := newLoggedInSession(t, handler)
	client := NewOrderClient(session)

	draft := checkout.OrderDraft{
		Type:     checkout.FulfillmentPickup,
		BranchID: "a1b2c3d4-e5f6-4890-abcd-ef1234567890",
		Products: []checkout.DraftProduct{{ProductPresentationID: "pres-1", Quantity: 2}},
	}
	created, err := client.CreateOrder(context.Background(), draft)

	require.NoError(t, err)
	assert.Equal(t, "order-9", created.ID)
	assert.Equal(t, "Bearer tok-test", gotAuth)
	assert.Equal(t, draft, gotDraft)
}

func TestOrderClientSurfacesServerFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	session, _ := newLoggedInSession(t, handler)
	client := NewOrderClient(session)

	_, err := client.CreateOrder(context.Background(), checkout.OrderDraft{})
	assert.Error(t, err)
}

func TestCouponClientValidate(t *testing.T) {
	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/coupons/SAVE100", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"code":            "SAVE100",
				"discount":        100.0,
				"expiration_date": expiry,
			},
		})
	})

	session, _ := newLoggedInSession(t, handler)
	client := NewCouponClient(session)

	info, err := client.ValidateCoupon(context.Background(), "SAVE100")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "SAVE100", info.Code)
	assert.InDelta(t, 100, info.Discount, 1e-6)
	assert.True(t, expiry.Equal(info.ExpirationDate))
}

func TestCouponClientUnknownCodeIsNil(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	session, _ := newLoggedInSession(t, handler)
	client := NewCouponClient(session)

	info, err := client.ValidateCoupon(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestUserClientGetProfile(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/profile", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"first_name": "Maria",
				"last_name":  "Lopez",
				"phone":      "04241112233",
			},
		})
	})

	session, _ := newLoggedInSession(t, handler)
	client := NewUserClient(session)

	profile, err := client.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Maria", profile.FirstName)
	assert.Equal(t, "04241112233", profile.Phone)
}
