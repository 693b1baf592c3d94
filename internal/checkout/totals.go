package checkout

import "time"

// Rates applied by the store. The line discount is a flat storefront promo on
// every active line; tax is the national VAT rate.
const (
	lineDiscountRate = 0.10
	taxRate          = 0.16
)

// CouponInfo is what the coupon backend returns for a valid code.
type CouponInfo struct {
	Code           string    `json:"code"`
	Discount       float64   `json:"discount"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// Expired reports whether the coupon is past its server-supplied expiration.
func (c CouponInfo) Expired(now time.Time) bool {
	return c.ExpirationDate.Before(now)
}

// Totals is the monetary summary of a cart, in minor currency units.
type Totals struct {
	Subtotal        float64 `json:"subtotal"`
	PerItemDiscount float64 `json:"per_item_discount"`
	AfterDiscount   float64 `json:"after_discount"`
	CouponDiscount  float64 `json:"coupon_discount"`
	AfterCoupon     float64 `json:"after_coupon"`
	Tax             float64 `json:"tax"`
	Total           float64 `json:"total"`
}

// ComputeTotals prices a cart. It is a pure function of its inputs and is
// meant to be recomputed on every call rather than cached. An expired coupon
// is ignored no matter what discount it carries; expiry is rechecked against
// now on every computation.
func ComputeTotals(items []CartItem, coupon *CouponInfo, now time.Time) Totals {
	var t Totals

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		line := item.UnitPrice * float64(item.Quantity)
		t.Subtotal += line
		t.PerItemDiscount += line * lineDiscountRate
	}

	t.AfterDiscount = t.Subtotal - t.PerItemDiscount
	t.AfterCoupon = t.AfterDiscount

	if coupon != nil && !coupon.Expired(now) {
		t.CouponDiscount = coupon.Discount
		t.AfterCoupon = t.AfterDiscount - coupon.Discount
	}

	t.Tax = t.AfterCoupon * taxRate
	t.Total = t.AfterCoupon + t.Tax
	return t
}
