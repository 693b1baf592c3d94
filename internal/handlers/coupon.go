package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/botica/internal/models"
)

// CouponHandler validates coupon codes for checkout.
type CouponHandler struct {
	db *gorm.DB
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(db *gorm.DB) *CouponHandler {
	return &CouponHandler{db: db}
}

// Validate looks a coupon up by code. The expiration date is returned as-is;
// the client re-checks it at apply time so a response cached on the way
// cannot resurrect an expired code.
func (h *CouponHandler) Validate(c *fiber.Ctx) error {
	code := strings.ToUpper(strings.TrimSpace(c.Params("code")))
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "coupon code is required")
	}

	var coupon models.Coupon
	if err := h.db.Where("code = ? AND is_active = ?", code, true).
		First(&coupon).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "coupon not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"code":            coupon.Code,
			"discount":        coupon.Discount,
			"expiration_date": coupon.ExpirationDate,
		},
	})
}
