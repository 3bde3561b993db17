package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/edulisthq/institute_listing/cache"
	"github.com/edulisthq/institute_listing/database"
	"github.com/edulisthq/institute_listing/models"
	"github.com/edulisthq/institute_listing/notifications"
	"github.com/edulisthq/institute_listing/payments"
	"github.com/edulisthq/institute_listing/services"
	"github.com/gofiber/fiber/v2"
)

type RazorpayWebhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				OrderID string `json:"order_id"`
				ID      string `json:"id"`
				Amount  int64  `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func HandleListingWebhook(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("X-Razorpay-Signature")
	if !payments.VerifyWebhookSignature(body, signature) {
		log.Println("⚠️ Rejected webhook with invalid signature")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var payload RazorpayWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	if payload.Event != "payment.captured" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ignored"})
	}

	entity := payload.Payload.Payment.Entity
	log.Printf("Received payment.captured webhook for order %s (payment %s, amount %d)", entity.OrderID, entity.ID, entity.Amount)

	pctx, err := cache.Payments.Get(c.Context(), entity.OrderID)
	if err != nil {
		log.Printf("⚠️ Failed to read payment context for order %s: %v", entity.OrderID, err)
	}
	if pctx == nil {
		log.Printf("⚠️ Payment context missing for order %s, falling back to subscription record", entity.OrderID)
	} else if pctx.InstitutionCategory == "" {
		// Older contexts were written without the category snapshot;
		// resolve it once from the subscription's institution.
		var subscription models.Subscription
		if err := database.DB.First(&subscription, "gateway_order_id = ?", entity.OrderID).Error; err == nil {
			var institution models.Institution
			if err := database.DB.First(&institution, "id = ?", subscription.InstitutionID).Error; err == nil {
				pctx.InstitutionCategory = institution.Category
			}
		}
	}

	result, err := services.ActivateSubscription(database.DB, entity.OrderID, entity.ID, pctx)
	if err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subscription not found for this order"})
		}
		if errors.Is(err, services.ErrMissingCourseContext) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "No course selection available for this order"})
		}
		log.Printf("🔥 Failed to activate subscription for order %s: %v", entity.OrderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
	}

	if result.AlreadyActive {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "already_active"})
	}

	// Post-commit cleanup: neither failure here may fail the webhook.
	if err := cache.Payments.Delete(c.Context(), entity.OrderID); err != nil {
		log.Printf("⚠️ Failed to delete payment context for order %s: %v", entity.OrderID, err)
	}
	go sendActivationEmail(entity.OrderID)

	log.Printf("✅ Activated %d course listings for order %s", result.ActivatedCourseCount, entity.OrderID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "activated_courses": result.ActivatedCourseCount})
}

func sendActivationEmail(orderID string) {
	var subscription models.Subscription
	err := database.DB.Preload("Institution").Preload("Institution.User").First(&subscription, "gateway_order_id = ?", orderID).Error
	if err != nil {
		log.Printf("⚠️ Could not load subscription for confirmation email: %v", err)
		return
	}

	user := subscription.Institution.User
	validUntil := "the end of your plan"
	if subscription.EndDate != nil {
		validUntil = subscription.EndDate.Format("02 Jan 2006")
	}
	notifications.SendEmail(user.FullName, user.Email, "Your Course Listings Are Live!",
		fmt.Sprintf("<h1>Listings Activated</h1><p>Your payment was received and your selected course listings are now live until %s.</p>", validUntil))
}
