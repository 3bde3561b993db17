package handlers

import (
	"errors"
	"log"

	"github.com/edulisthq/institute_listing/database"
	"github.com/edulisthq/institute_listing/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateCourseRequest struct {
	Title       string   `json:"title" validate:"required,min=3"`
	Description *string  `json:"description,omitempty"`
	Fees        *float64 `json:"fees,omitempty" validate:"omitempty,gte=0"`
}

// institutionFromClaims resolves the caller's institution from the JWT.
func institutionFromClaims(c *fiber.Ctx) (*models.Institution, error) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)

	userID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		return nil, err
	}

	var institution models.Institution
	if err := database.DB.First(&institution, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &institution, nil
}

func CreateCourse(c *fiber.Ctx) error {
	institution, err := institutionFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No institution found for this account"})
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	// New listings always start Inactive; only a paid or free activation
	// makes them visible.
	course := models.Course{
		InstitutionID: institution.ID,
		Title:         req.Title,
		Category:      institution.Category,
		Description:   req.Description,
		Fees:          req.Fees,
		Status:        models.CourseStatusInactive,
	}
	if err := database.DB.Create(&course).Error; err != nil {
		log.Printf("🔥 Failed to create course: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "course": course})
}

func GetMyCourses(c *fiber.Ctx) error {
	institution, err := institutionFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No institution found for this account"})
	}

	var courses []models.Course
	if err := database.DB.Where("institution_id = ?", institution.ID).Order("created_at DESC").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load courses"})
	}

	return c.JSON(fiber.Map{"status": "success", "courses": courses})
}

func GetCourse(c *fiber.Ctx) error {
	institution, err := institutionFromClaims(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No institution found for this account"})
	}

	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID format"})
	}

	var course models.Course
	if err := database.DB.First(&course, "id = ? AND institution_id = ?", courseID, institution.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{"status": "success", "course": course})
}
