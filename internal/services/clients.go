package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/example/botica/internal/checkout"
)

// OrderClient implements checkout.OrderService over the backend HTTP API.
type OrderClient struct {
	session *Session
}

// NewOrderClient builds an order client on an authenticated session.
func NewOrderClient(session *Session) *OrderClient {
	return &OrderClient{session: session}
}

type createOrderEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		ID string `json:"id"`
	} `json:"data"`
}

// CreateOrder submits a draft and returns the created order's id.
func (c *OrderClient) CreateOrder(ctx context.Context, draft checkout.OrderDraft) (checkout.CreatedOrder, error) {
	var decoded createOrderEnvelope
	status, err := c.session.do(ctx, http.MethodPost, "/api/orders", draft, &decoded)
	if err != nil {
		return checkout.CreatedOrder{}, err
	}
	if status != http.StatusCreated || !decoded.Success {
		return checkout.CreatedOrder{}, fmt.Errorf("order creation failed with status %d", status)
	}
	return checkout.CreatedOrder{ID: decoded.Data.ID}, nil
}

// CouponClient implements checkout.CouponService over the backend HTTP API.
type CouponClient struct {
	session *Session
}

// NewCouponClient builds a coupon client on an authenticated session.
func NewCouponClient(session *Session) *CouponClient {
	return &CouponClient{session: session}
}

type couponEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Code           string    `json:"code"`
		Discount       float64   `json:"discount"`
		ExpirationDate time.Time `json:"expiration_date"`
	} `json:"data"`
}

// ValidateCoupon resolves a code. A 404 means the code is unknown and is
// reported as a nil coupon, not an error.
func (c *CouponClient) ValidateCoupon(ctx context.Context, code string) (*checkout.CouponInfo, error) {
	var decoded couponEnvelope
	status, err := c.session.do(ctx, http.MethodGet, "/api/coupons/"+url.PathEscape(code), nil, &decoded)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK || !decoded.Success {
		return nil, fmt.Errorf("coupon validation failed with status %d", status)
	}
	return &checkout.CouponInfo{
		Code:           decoded.Data.Code,
		Discount:       decoded.Data.Discount,
		ExpirationDate: decoded.Data.ExpirationDate,
	}, nil
}

// UserClient implements checkout.UserService over the backend HTTP API.
type UserClient struct {
	session *Session
}

// NewUserClient builds a user client on an authenticated session.
func NewUserClient(session *Session) *UserClient {
	return &UserClient{session: session}
}

type profileEnvelope struct {
	Success bool             `json:"success"`
	Data    checkout.Profile `json:"data"`
}

// GetProfile fetches the authenticated user's profile.
func (c *UserClient) GetProfile(ctx context.Context) (checkout.Profile, error) {
	var decoded profileEnvelope
	status, err := c.session.do(ctx, http.MethodGet, "/api/profile", nil, &decoded)
	if err != nil {
		return checkout.Profile{}, err
	}
	if status != http.StatusOK || !decoded.Success {
		return checkout.Profile{}, fmt.Errorf("profile fetch failed with status %d", status)
	}
	return decoded.Data, nil
}
