package checkout

import (
	"context"
	"errors"
	"log"
	"regexp"
	"sync"
	"time"
)

// OrderDraft is the payload sent to the order backend. It is built from the
// cart and the selection right before submission, never stored.
type OrderDraft struct {
	Type          FulfillmentMethod `json:"type"`
	BranchID      string            `json:"branch_id,omitempty"`
	UserAddressID string            `json:"user_address_id,omitempty"`
	Products      []DraftProduct    `json:"products"`
}

// DraftProduct is one order line in a draft.
type DraftProduct struct {
	ProductPresentationID string `json:"product_presentation_id"`
	Quantity              int    `json:"quantity"`
}

// CreatedOrder is the order backend's answer to a successful submission.
type CreatedOrder struct {
	ID string `json:"id"`
}

// OrderService creates orders on the backend.
type OrderService interface {
	CreateOrder(ctx context.Context, draft OrderDraft) (CreatedOrder, error)
}

// CouponService validates coupon codes. A nil result with nil error means the
// code is unknown.
type CouponService interface {
	ValidateCoupon(ctx context.Context, code string) (*CouponInfo, error)
}

// Profile is the slice of the user profile checkout cares about.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UserService fetches the authenticated user's profile.
type UserService interface {
	GetProfile(ctx context.Context) (Profile, error)
}

// Navigator receives the flow's requests to leave the checkout screens.
// Implementations belong to whatever UI hosts the flow.
type Navigator interface {
	PopCheckout()
	ResetToCatalog()
}

// ConfirmationStatus describes the outcome shown on the confirmation step.
type ConfirmationStatus string

const (
	ConfirmationNone     ConfirmationStatus = ""
	ConfirmationApproved ConfirmationStatus = "approved"
	ConfirmationRejected ConfirmationStatus = "rejected"
)

// StepState is a snapshot of where the flow currently is.
type StepState struct {
	CurrentStep         int
	TotalSteps          int
	Labels              []string
	Confirmation        ConfirmationStatus
	ConfirmationMessage string
	OrderID             string
}

var uuidShapePattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ErrCombinationNotAllowed is returned when a payment method cannot be used
// with the chosen fulfillment method.
var ErrCombinationNotAllowed = errors.New("payment method not available for this fulfillment method")

// ErrInvalidCoupon is returned for unknown or expired coupon codes.
var ErrInvalidCoupon = errors.New("coupon is invalid or expired")

// Flow drives one checkout session from option selection to confirmation.
//
// The flow mirrors a single-threaded UI event loop: one user action at a
// time. Advance blocks while the order submission is in flight and a second
// Advance during that window is a no-op.
type Flow struct {
	mu sync.Mutex

	cart         *Cart
	selection    Selection
	verification PaymentVerification
	coupon       *CouponInfo

	step         int
	confirmation ConfirmationStatus
	confirmMsg   string
	orderID      string

	inFlight bool
	epoch    int

	orders  OrderService
	coupons CouponService
	users   UserService
	nav     Navigator

	now func() time.Time
}

// NewFlow starts a checkout session over the given cart. nav may be nil when
// no navigation host exists, e.g. in tests.
func NewFlow(cart *Cart, orders OrderService, coupons CouponService, users UserService, nav Navigator) *Flow {
	return &Flow{
		cart:    cart,
		step:    1,
		orders:  orders,
		coupons: coupons,
		users:   users,
		nav:     nav,
		now:     time.Now,
	}
}

// SelectFulfillment sets the fulfillment method. A previously chosen payment
// method that is incompatible with the new fulfillment method is dropped.
func (f *Flow) SelectFulfillment(m FulfillmentMethod) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selection.Fulfillment = &m
	if f.selection.Payment != nil && !Allowed(m, *f.selection.Payment) {
		f.selection.Payment = nil
	}
	f.selection.LocationID = nil
}

// SelectPayment sets the payment method, rejecting pairs the store does not
// sell (cash for pickup, card for delivery).
func (f *Flow) SelectPayment(m PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selection.Fulfillment != nil && !Allowed(*f.selection.Fulfillment, m) {
		return ErrCombinationNotAllowed
	}
	f.selection.Payment = &m
	return nil
}

// SelectLocation sets the pickup branch or delivery address id.
func (f *Flow) SelectLocation(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selection.LocationID = &id
}

// SetVerification stores the payment verification details entered on step 2.
func (f *Flow) SetVerification(v PaymentVerification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verification = v
}

// PrefillVerificationPhone copies the profile phone into the verification
// form when the user has not typed one. Profile failures are non-fatal.
func (f *Flow) PrefillVerificationPhone(ctx context.Context) {
	if f.users == nil {
		return
	}
	profile, err := f.users.GetProfile(ctx)
	if err != nil {
		log.Printf("[Checkout] profile prefill failed: %v", err)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.verification.Phone == "" {
		f.verification.Phone = profile.Phone
	}
}

// ApplyCoupon validates a code with the coupon backend and attaches it to the
// session. Expired coupons are rejected here and rechecked again at every
// totals computation.
func (f *Flow) ApplyCoupon(ctx context.Context, code string) error {
	info, err := f.coupons.ValidateCoupon(ctx, code)
	if err != nil {
		return err
	}
	if info == nil || info.Expired(f.now()) {
		return ErrInvalidCoupon
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coupon = info
	return nil
}

// RemoveCoupon detaches any applied coupon.
func (f *Flow) RemoveCoupon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coupon = nil
}

// Totals prices the cart with the current coupon state.
func (f *Flow) Totals() Totals {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ComputeTotals(f.cart.Items(), f.coupon, f.now())
}

// CurrentState reports the step position and confirmation outcome.
func (f *Flow) CurrentState() StepState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

func (f *Flow) stateLocked() StepState {
	total := 3
	if f.selection.Fulfillment != nil && f.selection.Payment != nil {
		total = TotalSteps(*f.selection.Fulfillment, *f.selection.Payment)
	}
	return StepState{
		CurrentStep:         f.step,
		TotalSteps:          total,
		Labels:              stepLabels(total),
		Confirmation:        f.confirmation,
		ConfirmationMessage: f.confirmMsg,
		OrderID:             f.orderID,
	}
}

func stepLabels(total int) []string {
	if total == 2 {
		return []string{"Options", "Confirmation"}
	}
	return []string{"Options", "Payment details", "Confirmation"}
}

// Advance moves the flow forward one step.
//
// Step 1 requires the full selection; the last content step validates payment
// details when the flow is not simplified, builds the draft and submits it.
// A failed submission keeps the step counter where it is and flips the
// confirmation to rejected, so the confirmation content renders in place.
// Advancing from the confirmation step clears the cart and asks the
// navigator to return to the catalog root.
func (f *Flow) Advance(ctx context.Context) error {
	f.mu.Lock()

	if f.inFlight {
		f.mu.Unlock()
		return nil
	}

	if f.selection.Fulfillment == nil || f.selection.Payment == nil || f.selection.LocationID == nil {
		err := f.validateSelectionLocked()
		f.mu.Unlock()
		return err
	}

	fulfillment := *f.selection.Fulfillment
	payment := *f.selection.Payment
	total := TotalSteps(fulfillment, payment)
	lastContent := total - 1

	switch {
	case f.step == total:
		// Confirmation reached: leave checkout.
		f.cart.Clear()
		f.resetLocked()
		nav := f.nav
		f.mu.Unlock()
		if nav != nil {
			nav.ResetToCatalog()
		}
		return nil

	case f.step < lastContent:
		f.step++
		f.mu.Unlock()
		return nil

	default:
		return f.submitLocked(ctx, fulfillment, payment, total)
	}
}

// validateSelectionLocked lists exactly the unset selection fields.
func (f *Flow) validateSelectionLocked() error {
	verr := &ValidationError{}
	if f.selection.Fulfillment == nil {
		verr.MissingFields = append(verr.MissingFields, "fulfillment_method")
		verr.Messages = append(verr.Messages, "choose pickup or delivery")
	}
	if f.selection.LocationID == nil {
		verr.MissingFields = append(verr.MissingFields, "location_id")
		verr.Messages = append(verr.Messages, "choose a branch or delivery address")
	}
	if f.selection.Payment == nil {
		verr.MissingFields = append(verr.MissingFields, "payment_method")
		verr.Messages = append(verr.Messages, "choose a payment method")
	}
	return verr
}

// submitLocked is entered holding the mutex and releases it around the
// network call.
func (f *Flow) submitLocked(ctx context.Context, fulfillment FulfillmentMethod, payment PaymentMethod, total int) error {
	if NeedsVerification(fulfillment, payment) {
		if problems := f.verification.Validate(); len(problems) > 0 {
			f.mu.Unlock()
			return &ValidationError{Messages: problems}
		}
	}

	locationID := *f.selection.LocationID
	if !uuidShapePattern.MatchString(locationID) {
		msg := "invalid branch selection"
		if fulfillment == FulfillmentDelivery {
			msg = "invalid delivery address selection"
		}
		f.confirmation = ConfirmationRejected
		f.confirmMsg = msg
		f.mu.Unlock()
		return &SubmissionError{Message: msg}
	}

	draft := OrderDraft{Type: fulfillment}
	if fulfillment == FulfillmentPickup {
		draft.BranchID = locationID
	} else {
		draft.UserAddressID = locationID
	}
	for _, item := range f.cart.ActiveItems() {
		draft.Products = append(draft.Products, DraftProduct{
			ProductPresentationID: item.ID,
			Quantity:              item.Quantity,
		})
	}

	f.inFlight = true
	epoch := f.epoch
	f.mu.Unlock()

	created, err := f.orders.CreateOrder(ctx, draft)

	f.mu.Lock()
	f.inFlight = false
	if f.epoch != epoch {
		// The session was reset while the call was outstanding; the
		// response belongs to a checkout that no longer exists.
		f.mu.Unlock()
		log.Printf("[Checkout] discarding order response from a reset session")
		return nil
	}

	if err != nil || created.ID == "" {
		f.confirmation = ConfirmationRejected
		f.confirmMsg = "your order could not be created, please try again"
		f.mu.Unlock()
		if err != nil {
			log.Printf("[Checkout] order creation failed: %v", err)
		}
		return &SubmissionError{Message: "order creation failed", Cause: err}
	}

	f.orderID = created.ID
	f.confirmation = ConfirmationApproved
	f.confirmMsg = ""
	f.step = total
	f.mu.Unlock()
	return nil
}

// GoBack steps backwards. On step 1 it asks the navigator to pop the checkout
// screen; once the confirmation step is reached it does nothing, so an order
// cannot be resubmitted by navigating back.
func (f *Flow) GoBack() {
	f.mu.Lock()
	if f.step > 1 && f.step == f.stateLocked().TotalSteps {
		f.mu.Unlock()
		return
	}
	if f.step > 1 {
		f.step--
		// Leaving a step behind leaves its rejection banner behind too.
		f.confirmation = ConfirmationNone
		f.confirmMsg = ""
		f.mu.Unlock()
		return
	}
	nav := f.nav
	f.mu.Unlock()
	if nav != nil {
		nav.PopCheckout()
	}
}

// Reset abandons the session: selection, verification data, coupon and step
// all return to their initial values. An in-flight submission's response is
// discarded when it lands.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *Flow) resetLocked() {
	f.selection = Selection{}
	f.verification = PaymentVerification{}
	f.coupon = nil
	f.step = 1
	f.confirmation = ConfirmationNone
	f.confirmMsg = ""
	f.orderID = ""
	f.epoch++
}
