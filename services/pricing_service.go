package services

import (
	"errors"
	"math"
	"time"

	config "github.com/edulisthq/institute_listing/configs"
	"github.com/edulisthq/institute_listing/models"
)

var (
	ErrInvalidPlan       = errors.New("unknown plan type")
	ErrNoEligibleCourses = errors.New("no eligible courses selected")

	ErrInvalidCoupon       = errors.New("coupon not found")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponInactive      = errors.New("coupon is no longer active")
	ErrCouponLimitExceeded = errors.New("coupon has reached its usage limit")
)

type ListingQuote struct {
	PricePerCourse float64
	BaseAmount     float64
	Discount       float64
	FinalAmount    float64
}

// CalculateListingPrice prices a listing order: course count times the plan
// unit price times the duration multiplier, minus an optional percentage
// coupon, never below zero.
func CalculateListingPrice(eligibleCourseCount int, planType string, durationMultiplier int, coupon *models.Coupon) (*ListingQuote, error) {
	if eligibleCourseCount <= 0 {
		return nil, ErrNoEligibleCourses
	}
	unitPrice, ok := config.PlanUnitPrice(planType)
	if !ok {
		return nil, ErrInvalidPlan
	}
	if durationMultiplier < 1 {
		durationMultiplier = 1
	}

	base := roundToCents(float64(eligibleCourseCount) * unitPrice * float64(durationMultiplier))
	quote := &ListingQuote{
		PricePerCourse: unitPrice,
		BaseAmount:     base,
		FinalAmount:    base,
	}

	if coupon != nil {
		if err := ValidateCoupon(coupon); err != nil {
			return nil, err
		}
		discount := roundToCents(base * coupon.DiscountPercentage / 100)
		final := base - discount
		if final < 0 {
			final = 0
		}
		quote.Discount = discount
		quote.FinalAmount = final
	}

	return quote, nil
}

// ValidateCoupon rejects a coupon with a distinct error per cause so the
// caller can surface a specific message.
func ValidateCoupon(coupon *models.Coupon) error {
	if coupon == nil {
		return ErrInvalidCoupon
	}
	if !coupon.IsActive {
		return ErrCouponInactive
	}
	if time.Now().After(coupon.ValidTill) {
		return ErrCouponExpired
	}
	if coupon.MaxUses > 0 && coupon.UseCount >= coupon.MaxUses {
		return ErrCouponLimitExceeded
	}
	return nil
}

func roundToCents(v float64) float64 {
	return math.Round(v*100) / 100
}
