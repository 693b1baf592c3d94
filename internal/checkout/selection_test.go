package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowTable(t *testing.T) {
	tests := []struct {
		name        string
		fulfillment FulfillmentMethod
		payment     PaymentMethod
		allowed     bool
		steps       int
	}{
		{"pickup card is simplified", FulfillmentPickup, PaymentCard, true, 2},
		{"pickup cash is not sold", FulfillmentPickup, PaymentCash, false, 3},
		{"pickup transfer needs verification", FulfillmentPickup, PaymentBankTransfer, true, 3},
		{"pickup mobile needs verification", FulfillmentPickup, PaymentMobilePayment, true, 3},
		{"delivery cash is simplified", FulfillmentDelivery, PaymentCash, true, 2},
		{"delivery card is not sold", FulfillmentDelivery, PaymentCard, false, 3},
		{"delivery transfer needs verification", FulfillmentDelivery, PaymentBankTransfer, true, 3},
		{"delivery mobile needs verification", FulfillmentDelivery, PaymentMobilePayment, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, Allowed(tt.fulfillment, tt.payment))
			assert.Equal(t, tt.steps, TotalSteps(tt.fulfillment, tt.payment))
		})
	}
}

func TestNeedsVerification(t *testing.T) {
	assert.False(t, NeedsVerification(FulfillmentPickup, PaymentCard))
	assert.False(t, NeedsVerification(FulfillmentDelivery, PaymentCash))
	assert.False(t, NeedsVerification(FulfillmentPickup, PaymentCash))
	assert.True(t, NeedsVerification(FulfillmentPickup, PaymentBankTransfer))
	assert.True(t, NeedsVerification(FulfillmentDelivery, PaymentMobilePayment))
}
