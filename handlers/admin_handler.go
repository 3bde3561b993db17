package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/edulisthq/institute_listing/database"
	"github.com/edulisthq/institute_listing/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateCouponRequest struct {
	Code               string    `json:"code" validate:"required,min=3,max=50,alphanum"`
	DiscountPercentage float64   `json:"discount_percentage" validate:"required,gt=0,lte=100"`
	ValidTill          time.Time `json:"valid_till" validate:"required"`
	MaxUses            int       `json:"max_uses,omitempty" validate:"omitempty,min=0"`
}

func CreateCoupon(c *fiber.Ctx) error {
	var req CreateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.ValidTill.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "valid_till must be in the future"})
	}

	coupon := models.Coupon{
		Code:               req.Code,
		DiscountPercentage: req.DiscountPercentage,
		ValidTill:          req.ValidTill,
		IsActive:           true,
		MaxUses:            req.MaxUses,
	}
	if err := database.DB.Create(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A coupon with this code already exists"})
		}
		log.Printf("🔥 Failed to create coupon: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create coupon"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "coupon": coupon})
}

func ListCoupons(c *fiber.Ctx) error {
	var coupons []models.Coupon
	if err := database.DB.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load coupons"})
	}
	return c.JSON(fiber.Map{"status": "success", "coupons": coupons})
}

func DeactivateCoupon(c *fiber.Ctx) error {
	couponID, err := uuid.Parse(c.Params("couponId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid coupon ID format"})
	}

	res := database.DB.Model(&models.Coupon{}).Where("id = ?", couponID).Update("is_active", false)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate coupon"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coupon not found"})
	}

	return c.JSON(fiber.Map{"status": "success"})
}
