package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edulisthq/institute_listing/database"
	"github.com/edulisthq/institute_listing/models"
	"github.com/edulisthq/institute_listing/routes"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret"

// setupHandlerTest wires the package-level DB handle the handlers use to a
// fresh in-memory database.
func setupHandlerTest(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying connection: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Institution{}, &models.Course{}, &models.Coupon{}, &models.Subscription{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.DB = db
	return db
}

func newTestApp() *fiber.App {
	app := fiber.New()
	routes.SubscriptionRoutes(app)
	return app
}

func seedInstitution(t *testing.T, db *gorm.DB) (*models.User, *models.Institution) {
	t.Helper()

	user := models.User{
		FullName: "Hilltop Academy Admin",
		Email:    fmt.Sprintf("admin-%s@hilltop.test", uuid.NewString()[:8]),
		Password: "hashed",
		Role:     "institution",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	institution := models.Institution{UserID: user.ID, Name: "Hilltop Academy", Category: "school"}
	if err := db.Create(&institution).Error; err != nil {
		t.Fatalf("failed to seed institution: %v", err)
	}
	return &user, &institution
}

func seedCourses(t *testing.T, db *gorm.DB, institutionID uuid.UUID, n int) []string {
	t.Helper()

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		course := models.Course{
			InstitutionID: institutionID,
			Title:         fmt.Sprintf("Course %d", i+1),
			Category:      "school",
			Status:        models.CourseStatusInactive,
		}
		if err := db.Create(&course).Error; err != nil {
			t.Fatalf("failed to seed course: %v", err)
		}
		ids = append(ids, course.ID.String())
	}
	return ids
}

func seedPendingSubscription(t *testing.T, db *gorm.DB, institutionID uuid.UUID, orderID string, courseIDs []string) *models.Subscription {
	t.Helper()

	sub := models.Subscription{
		InstitutionID:      institutionID,
		PlanType:           models.PlanTypeYearly,
		Status:             models.SubscriptionStatusPending,
		GatewayOrderID:     &orderID,
		Amount:             4995,
		DurationMultiplier: 1,
		CourseIDs:          models.CourseIDList(courseIDs),
	}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("failed to seed subscription: %v", err)
	}
	return &sub
}

func authToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"role":    "institution",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, app *fiber.App, method, target, token string, body interface{}, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return out
}
