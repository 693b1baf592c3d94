package ordersync

import "time"

// Status is the backend-owned order lifecycle state.
type Status string

const (
	StatusRequested      Status = "requested"
	StatusApproved       Status = "approved"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusInProgress     Status = "in_progress"
	StatusCanceled       Status = "canceled"
	StatusCompleted      Status = "completed"
)

// Terminal reports whether no further status changes can arrive.
func (s Status) Terminal() bool {
	return s == StatusCanceled || s == StatusCompleted
}

// Order is the locally mirrored view of a backend order. The backend is the
// only writer; the mirror converges to it through snapshots and patches.
type Order struct {
	ID            string      `json:"id"`
	Status        Status      `json:"status"`
	Type          string      `json:"type,omitempty"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	TotalPrice    float64     `json:"total_price,omitempty"`
	PlacedAt      time.Time   `json:"placed_at,omitempty"`
	Items         []OrderItem `json:"items,omitempty"`
}

// OrderItem is one line of a mirrored order.
type OrderItem struct {
	ProductPresentationID string  `json:"product_presentation_id"`
	Name                  string  `json:"name"`
	Quantity              int     `json:"quantity"`
	UnitPrice             float64 `json:"unit_price"`
}

// StatusPatch is the lightweight live-update event: only the status moved.
type StatusPatch struct {
	OrderID string `json:"order_id"`
	Status  Status `json:"status"`
}
