package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/edulisthq/institute_listing/cache"
	"github.com/edulisthq/institute_listing/database"
	"github.com/edulisthq/institute_listing/models"
	"github.com/edulisthq/institute_listing/payments"
	"github.com/edulisthq/institute_listing/services"
	"github.com/edulisthq/institute_listing/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateListingOrderRequest struct {
	PlanType           string   `json:"plan_type" validate:"required,oneof=monthly yearly"`
	CourseIDs          []string `json:"course_ids" validate:"required,min=1"`
	CouponCode         string   `json:"coupon_code,omitempty"`
	DurationMultiplier int      `json:"duration_multiplier,omitempty" validate:"omitempty,min=1,max=24"`
	ListingType        string   `json:"listing_type,omitempty" validate:"omitempty,oneof=free paid"`
}

// resolveEligibleCourses filters an explicit course selection down to ids
// that are valid UUIDs, belong to the institution's category partition and
// are currently Inactive. Duplicates are collapsed.
func resolveEligibleCourses(db *gorm.DB, institution *models.Institution, requested []string) ([]string, error) {
	seen := make(map[uuid.UUID]bool, len(requested))
	valid := make([]uuid.UUID, 0, len(requested))
	for _, raw := range requested {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		valid = append(valid, id)
	}
	if len(valid) == 0 {
		return nil, nil
	}

	var courses []models.Course
	err := db.Where("id IN ? AND institution_id = ? AND category = ? AND status = ?",
		valid, institution.ID, institution.Category, models.CourseStatusInactive).
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(courses))
	for _, course := range courses {
		ids = append(ids, course.ID.String())
	}
	return ids, nil
}

func CreateListingOrder(c *fiber.Ctx) error {
	institution, err := institutionFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No institution found for this account"})
	}

	var req CreateListingOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	eligibleIDs, err := resolveEligibleCourses(database.DB, institution, req.CourseIDs)
	if err != nil {
		log.Printf("🔥 Failed to resolve eligible courses: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if len(eligibleIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No eligible courses selected for activation"})
	}

	if req.ListingType == models.ListingTypeFree {
		sub, activated, err := services.ActivateFreeListing(database.DB, institution.ID, req.PlanType, eligibleIDs)
		if err != nil {
			log.Printf("🔥 Failed to activate free listing for institution %s: %v", institution.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to activate free listing"})
		}
		return c.JSON(fiber.Map{
			"status":                  "success",
			"listing_type":            models.ListingTypeFree,
			"total_activated_courses": activated,
			"valid_until":             sub.EndDate,
		})
	}

	var coupon *models.Coupon
	if req.CouponCode != "" {
		var found models.Coupon
		if err := database.DB.First(&found, "code = ?", req.CouponCode).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": services.ErrInvalidCoupon.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		coupon = &found
	}

	quote, err := services.CalculateListingPrice(len(eligibleIDs), req.PlanType, req.DurationMultiplier, coupon)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	receipt := utils.GenerateReceiptToken()
	order, err := payments.CreateRazorpayOrder(quote.FinalAmount, "INR", receipt)
	if err != nil {
		log.Printf("🔥 Razorpay order creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment order"})
	}

	pctx := &cache.PaymentContext{
		InstitutionID:       institution.ID.String(),
		SelectedCourseIDs:   eligibleIDs,
		TotalAmount:         quote.FinalAmount,
		PlanType:            req.PlanType,
		PricePerCourse:      quote.PricePerCourse,
		CouponCode:          req.CouponCode,
		InstitutionCategory: institution.Category,
		CreatedAt:           time.Now(),
	}
	// Best-effort: the pending subscription row below is the durable
	// fallback if this write is lost.
	if err := cache.Payments.Set(c.Context(), order.ID, pctx); err != nil {
		log.Printf("⚠️ Failed to cache payment context for order %s: %v", order.ID, err)
	}

	durationMultiplier := req.DurationMultiplier
	if durationMultiplier < 1 {
		durationMultiplier = 1
	}
	var couponID *uuid.UUID
	if coupon != nil {
		couponID = &coupon.ID
	}
	orderID := order.ID
	subscription := models.Subscription{
		InstitutionID:      institution.ID,
		PlanType:           req.PlanType,
		Status:             models.SubscriptionStatusPending,
		GatewayOrderID:     &orderID,
		Amount:             quote.FinalAmount,
		DurationMultiplier: durationMultiplier,
		CourseIDs:          models.CourseIDList(eligibleIDs),
		CouponID:           couponID,
	}
	if err := database.DB.Create(&subscription).Error; err != nil {
		log.Printf("🔥 Failed to persist pending subscription for order %s: %v", order.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record order"})
	}

	log.Printf("✅ Listing order %s created for institution %s (%d courses, %.2f)", order.ID, institution.ID, len(eligibleIDs), quote.FinalAmount)
	return c.JSON(fiber.Map{
		"status":                 "success",
		"order_id":               order.ID,
		"plan_type":              req.PlanType,
		"total_eligible_courses": len(eligibleIDs),
		"price_per_course":       quote.PricePerCourse,
		"total_amount":           quote.FinalAmount,
	})
}

// VerifyListingPayment lets a client that just finished checkout request
// activation immediately instead of waiting for the webhook. The signature
// comes from the gateway's client library; on mismatch the handler falls
// through to a plain status read, never a second activation.
func VerifyListingPayment(c *fiber.Ctx) error {
	institution, err := institutionFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No institution found for this account"})
	}

	orderID := c.Query("orderId")
	paymentID := c.Query("paymentId")
	signature := c.Query("signature")

	if orderID != "" && paymentID != "" && signature != "" {
		if payments.VerifyCheckoutSignature(orderID, paymentID, signature) {
			pctx, err := cache.Payments.Get(c.Context(), orderID)
			if err != nil {
				log.Printf("⚠️ Failed to read payment context for order %s: %v", orderID, err)
			}

			result, err := services.ActivateSubscription(database.DB, orderID, paymentID, pctx)
			if err != nil {
				// Non-fatal: the webhook may still land, and the response
				// below reports the real subscription status either way.
				log.Printf("⚠️ Manual verification could not activate order %s: %v", orderID, err)
			} else if !result.AlreadyActive {
				if err := cache.Payments.Delete(c.Context(), orderID); err != nil {
					log.Printf("⚠️ Failed to delete payment context for order %s: %v", orderID, err)
				}
				log.Printf("✅ Activated %d course listings for order %s via client verification", result.ActivatedCourseCount, orderID)
			}
		} else {
			log.Printf("⚠️ Rejected listing verification with bad signature for order %s", orderID)
		}
	}

	var subscription models.Subscription
	if err := database.DB.Where("institution_id = ?", institution.ID).Order("created_at DESC").First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"success": false, "status": models.SubscriptionStatusPending})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{
		"success": subscription.Status == models.SubscriptionStatusActive,
		"status":  subscription.Status,
	})
}
