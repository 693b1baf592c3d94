package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/botica/internal/checkout"
	"github.com/example/botica/internal/middleware"
	"github.com/example/botica/internal/models"
	"github.com/example/botica/internal/ws"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	db  *gorm.DB
	hub *ws.Hub
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{db: db, hub: hub}
}

type draftProductRequest struct {
	ProductPresentationID string `json:"product_presentation_id"`
	Quantity              int    `json:"quantity"`
}

type paymentVerificationRequest struct {
	Bank           string `json:"bank"`
	Reference      string `json:"reference"`
	DocumentNumber string `json:"document_number"`
	Phone          string `json:"phone"`
}

type createOrderRequest struct {
	Type          string                      `json:"type"`
	BranchID      string                      `json:"branch_id"`
	UserAddressID string                      `json:"user_address_id"`
	PaymentMethod string                      `json:"payment_method"`
	Verification  *paymentVerificationRequest `json:"payment_verification"`
	CouponCode    string                      `json:"coupon_code"`
	Products      []draftProductRequest       `json:"products"`
}

// CreateOrder places an order. Lines are priced server-side from the stored
// presentations; the client's totals are never trusted.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if len(req.Products) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "order has no products")
	}

	fulfillment := checkout.FulfillmentMethod(req.Type)
	payment := checkout.PaymentMethod(req.PaymentMethod)
	if !checkout.Allowed(fulfillment, payment) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "payment method not available for this fulfillment method")
	}

	order := models.Order{
		UserID:        userID,
		Status:        models.OrderStatusRequested,
		Type:          req.Type,
		PaymentMethod: req.PaymentMethod,
		PlacedAt:      time.Now(),
	}

	switch fulfillment {
	case checkout.FulfillmentPickup:
		id, err := uuid.Parse(req.BranchID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid branch id")
		}
		var branch models.Branch
		if err := h.db.First(&branch, "id = ? AND is_active = ?", id, true).Error; err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "branch not available")
		}
		order.BranchID = &branch.ID
	case checkout.FulfillmentDelivery:
		id, err := uuid.Parse(req.UserAddressID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid address id")
		}
		var address models.UserAddress
		if err := h.db.First(&address, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "address not found")
		}
		order.UserAddressID = &address.ID
	}

	if checkout.NeedsVerification(fulfillment, payment) {
		if req.Verification == nil {
			return fiber.NewError(fiber.StatusBadRequest, "payment verification is required")
		}
		verification := checkout.PaymentVerification{
			Bank:           req.Verification.Bank,
			Reference:      req.Verification.Reference,
			DocumentNumber: req.Verification.DocumentNumber,
			Phone:          req.Verification.Phone,
		}
		if problems := verification.Validate(); len(problems) > 0 {
			return fiber.NewError(fiber.StatusUnprocessableEntity, problems[0])
		}
		order.PaymentBank = req.Verification.Bank
		order.PaymentReference = req.Verification.Reference
	}

	// Price the lines from storage and reuse the checkout math so the server
	// and the client agree on every figure.
	var cartItems []checkout.CartItem
	for _, p := range req.Products {
		if p.Quantity <= 0 {
			continue
		}
		presentationID, err := uuid.Parse(p.ProductPresentationID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid presentation id")
		}

		var presentation models.ProductPresentation
		if err := h.db.First(&presentation, "id = ?", presentationID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity,
				fmt.Sprintf("presentation %s not available", p.ProductPresentationID))
		}

		var product models.Product
		if err := h.db.First(&product, "id = ?", presentation.ProductID).Error; err != nil {
			return err
		}

		order.Items = append(order.Items, models.OrderItem{
			ProductPresentationID: presentation.ID,
			ProductName:           product.Name,
			PresentationLabel:     presentation.Label,
			Quantity:              p.Quantity,
			UnitPrice:             presentation.UnitPrice,
			LineTotal:             presentation.UnitPrice * float64(p.Quantity),
		})
		cartItems = append(cartItems, checkout.CartItem{
			ID:        presentation.ID.String(),
			UnitPrice: presentation.UnitPrice,
			Quantity:  p.Quantity,
		})
	}

	if len(order.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "order has no products")
	}

	var coupon *checkout.CouponInfo
	if req.CouponCode != "" {
		var stored models.Coupon
		err := h.db.Where("code = ? AND is_active = ?", req.CouponCode, true).First(&stored).Error
		if err == nil {
			coupon = &checkout.CouponInfo{
				Code:           stored.Code,
				Discount:       stored.Discount,
				ExpirationDate: stored.ExpirationDate,
			}
			order.CouponCode = stored.Code
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
	}

	totals := checkout.ComputeTotals(cartItems, coupon, time.Now())
	order.Subtotal = totals.Subtotal
	order.Discount = totals.PerItemDiscount
	order.CouponDiscount = totals.CouponDiscount
	order.Tax = totals.Tax
	order.TotalPrice = totals.Total
	order.OrderNumber = generateOrderNumber()

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	log.Printf("[Order] order %s placed by %s (%s, %s)", order.OrderNumber, userID, order.Type, order.PaymentMethod)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":           order.ID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"placed_at":    order.PlacedAt,
			"total_price":  order.TotalPrice,
		},
	})
}

// ListOrders returns orders for the authenticated user. Couriers see the
// delivery queue instead of their own purchases.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	query := h.db.Model(&models.Order{})
	if isCourier, _ := c.Locals(middleware.CourierContextKey).(bool); isCourier {
		query = query.Where("type = ? AND status IN ?", "delivery",
			[]string{models.OrderStatusApproved, models.OrderStatusInProgress})
	} else {
		query = query.Where("user_id = ?", userID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	query := h.db.Preload("Items").Preload("Branch")
	if isCourier, _ := c.Locals(middleware.CourierContextKey).(bool); !isCourier {
		query = query.Where("user_id = ?", userID)
	}

	var order models.Order
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order along its lifecycle and pushes the change to
// every tracking client in the order's room. Couriers taking a delivery are
// assigned to it on the in_progress transition.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if !models.CanTransition(order.Status, req.Status) {
		return fiber.NewError(fiber.StatusUnprocessableEntity,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, req.Status))
	}

	updates := map[string]any{"status": req.Status}
	if req.Status == models.OrderStatusInProgress && order.CourierID == nil {
		updates["courier_id"] = userID
	}

	if err := h.db.Model(&order).Updates(updates).Error; err != nil {
		return err
	}

	if h.hub != nil {
		h.hub.BroadcastStatus(order.ID.String(), req.Status)
	}

	log.Printf("[Order] order %s moved to %s", order.OrderNumber, req.Status)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"id": order.ID, "status": req.Status},
	})
}

func generateOrderNumber() string {
	return fmt.Sprintf("#%d", time.Now().UnixNano()%1000000000)
}
