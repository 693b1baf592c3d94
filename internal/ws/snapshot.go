package ws

import (
	"time"

	"github.com/example/botica/internal/models"
)

// OrderSnapshot is the wire shape of a full order event. It is the contract
// the ordersync client decodes, kept separate from the storage model.
type OrderSnapshot struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Type          string         `json:"type"`
	PaymentMethod string         `json:"payment_method"`
	TotalPrice    float64        `json:"total_price"`
	PlacedAt      time.Time      `json:"placed_at"`
	Items         []SnapshotItem `json:"items"`
}

// SnapshotItem is one order line on the wire.
type SnapshotItem struct {
	ProductPresentationID string  `json:"product_presentation_id"`
	Name                  string  `json:"name"`
	Quantity              int     `json:"quantity"`
	UnitPrice             float64 `json:"unit_price"`
}

// StatusPatch is the lightweight update event carrying only the new status.
type StatusPatch struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// SnapshotFromOrder converts a stored order into its wire shape.
func SnapshotFromOrder(order models.Order) OrderSnapshot {
	snapshot := OrderSnapshot{
		ID:            order.ID.String(),
		Status:        order.Status,
		Type:          order.Type,
		PaymentMethod: order.PaymentMethod,
		TotalPrice:    order.TotalPrice,
		PlacedAt:      order.PlacedAt,
	}
	for _, item := range order.Items {
		snapshot.Items = append(snapshot.Items, SnapshotItem{
			ProductPresentationID: item.ProductPresentationID.String(),
			Name:                  item.ProductName,
			Quantity:              item.Quantity,
			UnitPrice:             item.UnitPrice,
		})
	}
	return snapshot
}
