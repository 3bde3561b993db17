package jobs

import (
	"log"
	"time"

	"github.com/edulisthq/institute_listing/database"
	"github.com/edulisthq/institute_listing/models"
)

// DeactivateExpiredListings flips courses whose paid or free window has
// passed back to Inactive. Subscription rows are left untouched as the
// audit trail.
func DeactivateExpiredListings() {
	log.Println("Running job: DeactivateExpiredListings...")

	res := database.DB.Model(&models.Course{}).
		Where("status = ? AND subscription_end_date IS NOT NULL AND subscription_end_date < ?",
			models.CourseStatusActive, time.Now()).
		Update("status", models.CourseStatusInactive)

	if res.Error != nil {
		log.Printf("Error deactivating expired listings: %v", res.Error)
		return
	}

	if res.RowsAffected > 0 {
		log.Printf("Deactivated %d expired course listings", res.RowsAffected)
	}
}
