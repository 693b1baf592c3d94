package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses pushed to tracking clients. Canceled and completed are
// terminal.
const (
	OrderStatusRequested      = "requested"
	OrderStatusApproved       = "approved"
	OrderStatusReadyForPickup = "ready_for_pickup"
	OrderStatusInProgress     = "in_progress"
	OrderStatusCanceled       = "canceled"
	OrderStatusCompleted      = "completed"
)

// Order is a placed order. All amounts are minor currency units.
type Order struct {
	BaseModel
	UserID           uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User             *User       `json:"user,omitempty"`
	OrderNumber      string      `gorm:"uniqueIndex" json:"order_number"`
	Status           string      `json:"status"`
	Type             string      `json:"type"`
	PlacedAt         time.Time   `json:"placed_at"`
	BranchID         *uuid.UUID  `gorm:"type:uuid" json:"branch_id"`
	Branch           *Branch     `json:"branch,omitempty"`
	UserAddressID    *uuid.UUID  `gorm:"type:uuid" json:"user_address_id"`
	CourierID        *uuid.UUID  `gorm:"type:uuid" json:"courier_id"`
	PaymentMethod    string      `json:"payment_method"`
	PaymentBank      string      `json:"payment_bank,omitempty"`
	PaymentReference string      `json:"payment_reference,omitempty"`
	Subtotal         float64     `json:"subtotal"`
	Discount         float64     `json:"discount"`
	CouponCode       string      `json:"coupon_code,omitempty"`
	CouponDiscount   float64     `json:"coupon_discount"`
	Tax              float64     `json:"tax"`
	TotalPrice       float64     `json:"total_price"`
	Items            []OrderItem `json:"items,omitempty"`
}

// OrderItem is one order line, priced server-side at creation time.
type OrderItem struct {
	BaseModel
	OrderID               uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductPresentationID uuid.UUID `gorm:"type:uuid" json:"product_presentation_id"`
	ProductName           string    `json:"product_name"`
	PresentationLabel     string    `json:"presentation_label"`
	Quantity              int       `json:"quantity"`
	UnitPrice             float64   `json:"unit_price"`
	LineTotal             float64   `json:"line_total"`
}

// TerminalStatus reports whether a status admits no further transitions.
func TerminalStatus(status string) bool {
	return status == OrderStatusCanceled || status == OrderStatusCompleted
}

// nextStatuses is the legal status progression. The backend is the only
// writer; couriers and branch staff move orders along these edges.
var nextStatuses = map[string][]string{
	OrderStatusRequested:      {OrderStatusApproved, OrderStatusCanceled},
	OrderStatusApproved:       {OrderStatusReadyForPickup, OrderStatusInProgress, OrderStatusCanceled},
	OrderStatusReadyForPickup: {OrderStatusCompleted, OrderStatusCanceled},
	OrderStatusInProgress:     {OrderStatusCompleted, OrderStatusCanceled},
}

// CanTransition reports whether status may move from one value to another.
func CanTransition(from, to string) bool {
	for _, allowed := range nextStatuses[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
