package checkout

// FulfillmentMethod says how the customer receives the order.
type FulfillmentMethod string

const (
	FulfillmentPickup   FulfillmentMethod = "pickup"
	FulfillmentDelivery FulfillmentMethod = "delivery"
)

// PaymentMethod is the customer's chosen way to pay.
type PaymentMethod string

const (
	PaymentCard          PaymentMethod = "card"
	PaymentCash          PaymentMethod = "cash"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
	PaymentMobilePayment PaymentMethod = "mobile_payment"
)

// Selection holds the two choices that shape the checkout flow, plus the
// pickup branch or delivery address they point at. Nil means not chosen yet.
type Selection struct {
	Fulfillment *FulfillmentMethod
	Payment     *PaymentMethod
	LocationID  *string
}

type flowVariant struct {
	allowed    bool
	simplified bool
}

// flowTable maps every fulfillment+payment pair to whether it is sellable and
// whether the payment-details step can be skipped. Card requires the terminal
// at a branch, cash requires a courier at the door, so each is tied to one
// fulfillment method.
var flowTable = map[FulfillmentMethod]map[PaymentMethod]flowVariant{
	FulfillmentPickup: {
		PaymentCard:          {allowed: true, simplified: true},
		PaymentCash:          {allowed: false},
		PaymentBankTransfer:  {allowed: true},
		PaymentMobilePayment: {allowed: true},
	},
	FulfillmentDelivery: {
		PaymentCard:          {allowed: false},
		PaymentCash:          {allowed: true, simplified: true},
		PaymentBankTransfer:  {allowed: true},
		PaymentMobilePayment: {allowed: true},
	},
}

// flowFor looks up the variant for a pair. Unknown methods are not allowed.
func flowFor(fulfillment FulfillmentMethod, payment PaymentMethod) flowVariant {
	byPayment, ok := flowTable[fulfillment]
	if !ok {
		return flowVariant{}
	}
	return byPayment[payment]
}

// Allowed reports whether a fulfillment+payment pair is sellable.
func Allowed(fulfillment FulfillmentMethod, payment PaymentMethod) bool {
	return flowFor(fulfillment, payment).allowed
}

// TotalSteps returns how many checkout steps the pair produces: two when the
// payment needs no pre-validated reference, three otherwise.
func TotalSteps(fulfillment FulfillmentMethod, payment PaymentMethod) int {
	if flowFor(fulfillment, payment).simplified {
		return 2
	}
	return 3
}

// NeedsVerification reports whether the pair requires payment verification
// details before the order can be submitted.
func NeedsVerification(fulfillment FulfillmentMethod, payment PaymentMethod) bool {
	v := flowFor(fulfillment, payment)
	return v.allowed && !v.simplified
}
