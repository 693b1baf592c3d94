package ws

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/botica/internal/models"
)

func TestSnapshotFromOrder(t *testing.T) {
	orderID := uuid.New()
	presentationID := uuid.New()
	placed := time.Now()

	order := models.Order{
		BaseModel:     models.BaseModel{ID: orderID},
		Status:        models.OrderStatusApproved,
		Type:          "pickup",
		PaymentMethod: "card",
		TotalPrice:    2088,
		PlacedAt:      placed,
		Items: []models.OrderItem{
			{
				ProductPresentationID: presentationID,
				ProductName:           "ibuprofen 400mg",
				Quantity:              2,
				UnitPrice:             1000,
			},
		},
	}

	snapshot := SnapshotFromOrder(order)

	assert.Equal(t, orderID.String(), snapshot.ID)
	assert.Equal(t, "approved", snapshot.Status)
	assert.Equal(t, "pickup", snapshot.Type)
	assert.InDelta(t, 2088, snapshot.TotalPrice, 1e-6)
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, presentationID.String(), snapshot.Items[0].ProductPresentationID)
	assert.Equal(t, "ibuprofen 400mg", snapshot.Items[0].Name)
}
