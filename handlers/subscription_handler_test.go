package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/edulisthq/institute_listing/models"
)

const testCheckoutSecret = "test-key-secret"

func TestCreateListingOrder_NoEligibleCourses(t *testing.T) {
	db := setupHandlerTest(t)
	app := newTestApp()

	user, _ := seedInstitution(t, db)
	token := authToken(t, user.ID)

	body := map[string]interface{}{
		"plan_type":  "yearly",
		"course_ids": []string{"not-a-uuid", "also-garbage"},
	}
	resp := doRequest(t, app, http.MethodPost, "/api/v1/subscriptions/order", token, body, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without eligible courses, got %d", resp.StatusCode)
	}
	out := decodeBody(t, resp)
	if out["error"] != "No eligible courses selected for activation" {
		t.Fatalf("unexpected error message: %v", out["error"])
	}
}

func TestCreateListingOrder_ActiveCoursesNotEligible(t *testing.T) {
	db := setupHandlerTest(t)
	app := newTestApp()

	user, institution := seedInstitution(t, db)
	token := authToken(t, user.ID)

	courseIDs := seedCourses(t, db, institution.ID, 1)
	if err := db.Model(&models.Course{}).Where("id = ?", courseIDs[0]).Update("status", models.CourseStatusActive).Error; err != nil {
		t.Fatalf("failed to mark course active: %v", err)
	}

	body := map[string]interface{}{
		"plan_type":  "yearly",
		"course_ids": courseIDs,
	}
	resp := doRequest(t, app, http.MethodPost, "/api/v1/subscriptions/order", token, body, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for already-active courses, got %d", resp.StatusCode)
	}
}

func TestCreateListingOrder_ExhaustedCouponRejected(t *testing.T) {
	db := setupHandlerTest(t)
	app := newTestApp()

	user, institution := seedInstitution(t, db)
	token := authToken(t, user.ID)
	courseIDs := seedCourses(t, db, institution.ID, 2)

	coupon := models.Coupon{
		Code:               "USEDUP",
		DiscountPercentage: 25,
		ValidTill:          time.Now().Add(24 * time.Hour),
		IsActive:           true,
		MaxUses:            3,
		UseCount:           3,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("failed to seed coupon: %v", err)
	}

	body := map[string]interface{}{
		"plan_type":   "yearly",
		"course_ids":  courseIDs,
		"coupon_code": "USEDUP",
	}
	resp := doRequest(t, app, http.MethodPost, "/api/v1/subscriptions/order", token, body, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for exhausted coupon, got %d", resp.StatusCode)
	}
	out := decodeBody(t, resp)
	if out["error"] != "coupon has reached its usage limit" {
		t.Fatalf("unexpected error message: %v", out["error"])
	}

	var pending int64
	if err := db.Model(&models.Subscription{}).Count(&pending).Error; err != nil {
		t.Fatalf("failed to count subscriptions: %v", err)
	}
	if pending != 0 {
		t.Fatalf("expected no subscription rows after rejected order, got %d", pending)
	}
}

func TestCreateListingOrder_UnknownCouponRejected(t *testing.T) {
	db := setupHandlerTest(t)
	app := newTestApp()

	user, institution := seedInstitution(t, db)
	token := authToken(t, user.ID)
	courseIDs := seedCourses(t, db, institution.ID, 1)

	body := map[string]interface{}{
		"plan_type":   "monthly",
		"course_ids":  courseIDs,
		"coupon_code": "NOPE",
	}
	resp := doRequest(t, app, http.MethodPost, "/api/v1/subscriptions/order", token, body, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown coupon, got %d", resp.StatusCode)
	}
}

func TestCreateListingOrder_FreeListing(t *testing.T) {
	db := setupHandlerTest(t)
	app := newTestApp()

	user, institution := seedInstitution(t, db)
	token := authToken(t, user.ID)
	courseIDs := seedCourses(t, db, institution.ID, 2)

	body := map[string]interface{}{
		"plan_type":    "monthly",
		"course_ids":   courseIDs,
		"listing_type": "free",
	}
	resp := doRequest(t, app, http.MethodPost, "/api/v1/subscriptions/order", token, body, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for free listing, got %d", resp.StatusCode)
	}
	out := decodeBody(t, resp)
	if out["status"] != "success" {
		t.Fatalf("expected success, got %v", out["status"])
	}
	if got := out["total_activated_courses"]; got != float64(2) {
		t.Fatalf("expected 2 activated courses, got %v", got)
	}

	var courses []models.Course
	if err := db.Where("institution_id = ?", institution.ID).Find(&courses).Error; err != nil {
		t.Fatalf("failed to load courses: %v", err)
	}
	for _, course := range courses {
		if course.Status != models.CourseStatusActive {
			t.Fatalf("course %s not activated", course.ID)
		}
		if course.ListingType == nil || *course.ListingType != models.ListingTypeFree {
			t.Fatalf("course %s missing free listing type", course.ID)
		}
	}

	var sub models.Subscription
	if err := db.Where("institution_id = ?", institution.ID).First(&sub).Error; err != nil {
		t.Fatalf("failed to load subscription: %v", err)
	}
	if sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("expected free subscription active, got %s", sub.Status)
	}
	if sub.Amount != 0 {
		t.Fatalf("expected zero amount on free listing, got %v", sub.Amount)
	}
}

func TestCreateListingOrder_RequiresAuth(t *testing.T) {
	setupHandlerTest(t)
	app := newTestApp()

	body := map[string]interface{}{"plan_type": "yearly", "course_ids": []string{"x"}}
	resp := doRequest(t, app, http.MethodPost, "/api/v1/subscriptions/order", "", body, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestVerifyListingPayment_ValidSignatureActivates(t *testing.T) {
	db := setupHandlerTest(t)
	t.Setenv("RAZORPAY_KEY_SECRET", testCheckoutSecret)
	app := newTestApp()

	user, institution := seedInstitution(t, db)
	token := authToken(t, user.ID)
	courseIDs := seedCourses(t, db, institution.ID, 2)
	seedPendingSubscription(t, db, institution.ID, "order_poll", courseIDs)

	signature := signHex(testCheckoutSecret, "order_poll|pay_poll")
	target := fmt.Sprintf("/api/v1/subscriptions/verify?orderId=order_poll&paymentId=pay_poll&signature=%s", signature)
	resp := doRequest(t, app, http.MethodGet, target, token, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	out := decodeBody(t, resp)
	if out["success"] != true {
		t.Fatalf("expected success true, got %v", out["success"])
	}
	if out["status"] != models.SubscriptionStatusActive {
		t.Fatalf("expected active status, got %v", out["status"])
	}

	var activeCourses int64
	if err := db.Model(&models.Course{}).Where("institution_id = ? AND status = ?", institution.ID, models.CourseStatusActive).Count(&activeCourses).Error; err != nil {
		t.Fatalf("failed to count courses: %v", err)
	}
	if activeCourses != 2 {
		t.Fatalf("expected 2 active courses, got %d", activeCourses)
	}
}

func TestVerifyListingPayment_BadSignatureReportsOnly(t *testing.T) {
	db := setupHandlerTest(t)
	t.Setenv("RAZORPAY_KEY_SECRET", testCheckoutSecret)
	app := newTestApp()

	user, institution := seedInstitution(t, db)
	token := authToken(t, user.ID)
	courseIDs := seedCourses(t, db, institution.ID, 1)
	sub := seedPendingSubscription(t, db, institution.ID, "order_bad", courseIDs)

	target := "/api/v1/subscriptions/verify?orderId=order_bad&paymentId=pay_bad&signature=deadbeef"
	resp := doRequest(t, app, http.MethodGet, target, token, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 status read, got %d", resp.StatusCode)
	}
	out := decodeBody(t, resp)
	if out["success"] != false {
		t.Fatalf("expected success false, got %v", out["success"])
	}
	if out["status"] != models.SubscriptionStatusPending {
		t.Fatalf("expected pending status, got %v", out["status"])
	}

	var reloaded models.Subscription
	if err := db.First(&reloaded, "id = ?", sub.ID).Error; err != nil {
		t.Fatalf("failed to reload subscription: %v", err)
	}
	if reloaded.Status != models.SubscriptionStatusPending {
		t.Fatalf("bad signature must not activate, got %s", reloaded.Status)
	}
}

func TestVerifyListingPayment_NoSubscriptions(t *testing.T) {
	db := setupHandlerTest(t)
	app := newTestApp()

	user, _ := seedInstitution(t, db)
	token := authToken(t, user.ID)

	resp := doRequest(t, app, http.MethodGet, "/api/v1/subscriptions/verify", token, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	out := decodeBody(t, resp)
	if out["success"] != false || out["status"] != models.SubscriptionStatusPending {
		t.Fatalf("expected pending default, got %v / %v", out["success"], out["status"])
	}
}
