package services

import (
	"errors"
	"time"

	"github.com/edulisthq/institute_listing/cache"
	"github.com/edulisthq/institute_listing/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrMissingCourseContext = errors.New("no course selection available for this subscription")
)

type ActivationResult struct {
	AlreadyActive        bool
	ActivatedCourseCount int
}

// ActivateSubscription transitions a pending subscription to active, marks
// its courses live and increments coupon usage, all in one transaction.
// Both the webhook and the client verification poll call this; the
// idempotency gate is the conditional UPDATE on status, so two concurrent
// callers cannot both activate the same order — the loser sees zero rows
// affected and reports AlreadyActive.
func ActivateSubscription(db *gorm.DB, orderID string, paymentID string, pctx *cache.PaymentContext) (*ActivationResult, error) {
	result := &ActivationResult{}

	err := db.Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.First(&sub, "gateway_order_id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return err
		}

		now := time.Now()
		endDate := listingEndDate(now, sub.PlanType, sub.DurationMultiplier)

		res := tx.Model(&models.Subscription{}).
			Where("id = ? AND status = ?", sub.ID, models.SubscriptionStatusPending).
			Updates(map[string]interface{}{
				"status":             models.SubscriptionStatusActive,
				"gateway_payment_id": paymentID,
				"start_date":         now,
				"end_date":           endDate,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The other verification path already activated this order.
			result.AlreadyActive = true
			return nil
		}

		if sub.CouponID != nil {
			if err := tx.Model(&models.Coupon{}).Where("id = ?", *sub.CouponID).
				UpdateColumn("use_count", gorm.Expr("use_count + 1")).Error; err != nil {
				return err
			}
		}

		courseIDs := []string(sub.CourseIDs)
		if pctx != nil && len(pctx.SelectedCourseIDs) > 0 {
			courseIDs = pctx.SelectedCourseIDs
		}
		if len(courseIDs) == 0 {
			return ErrMissingCourseContext
		}

		courses := tx.Model(&models.Course{}).
			Where("id IN ? AND institution_id = ? AND status = ?", courseIDs, sub.InstitutionID, models.CourseStatusInactive).
			Updates(map[string]interface{}{
				"status":                  models.CourseStatusActive,
				"listing_type":            models.ListingTypePaid,
				"subscription_start_date": now,
				"subscription_end_date":   endDate,
			})
		if courses.Error != nil {
			return courses.Error
		}
		result.ActivatedCourseCount = int(courses.RowsAffected)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

const freeListingDays = 30

// ActivateFreeListing creates a subscription directly in active status and
// marks the eligible courses live as free listings. There is no gateway
// order and so nothing asynchronous to reconcile.
func ActivateFreeListing(db *gorm.DB, institutionID uuid.UUID, planType string, courseIDs []string) (*models.Subscription, int, error) {
	var sub models.Subscription
	activated := 0

	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		endDate := now.AddDate(0, 0, freeListingDays)

		sub = models.Subscription{
			InstitutionID:      institutionID,
			PlanType:           planType,
			Status:             models.SubscriptionStatusActive,
			Amount:             0,
			DurationMultiplier: 1,
			CourseIDs:          models.CourseIDList(courseIDs),
			StartDate:          &now,
			EndDate:            &endDate,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}

		courses := tx.Model(&models.Course{}).
			Where("id IN ? AND institution_id = ? AND status = ?", courseIDs, institutionID, models.CourseStatusInactive).
			Updates(map[string]interface{}{
				"status":                  models.CourseStatusActive,
				"listing_type":            models.ListingTypeFree,
				"subscription_start_date": now,
				"subscription_end_date":   endDate,
			})
		if courses.Error != nil {
			return courses.Error
		}
		activated = int(courses.RowsAffected)
		return nil
	})

	if err != nil {
		return nil, 0, err
	}
	return &sub, activated, nil
}

func listingEndDate(start time.Time, planType string, durationMultiplier int) time.Time {
	if planType == models.PlanTypeYearly {
		return start.AddDate(1, 0, 0)
	}
	if durationMultiplier < 1 {
		durationMultiplier = 1
	}
	return start.AddDate(0, durationMultiplier, 0)
}
