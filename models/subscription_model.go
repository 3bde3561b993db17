package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionStatusPending = "pending"
	SubscriptionStatusActive  = "active"

	PlanTypeMonthly = "monthly"
	PlanTypeYearly  = "yearly"
)

// CourseIDList is stored as a single JSON text column so the subscription
// row always carries the exact course selection it was created for.
type CourseIDList []string

func (l CourseIDList) Value() (driver.Value, error) {
	if l == nil {
		l = CourseIDList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *CourseIDList) Scan(value interface{}) error {
	if value == nil {
		*l = CourseIDList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into CourseIDList", value)
	}
}

type Subscription struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	InstitutionID      uuid.UUID    `gorm:"not null;index" json:"institution_id"`
	PlanType           string       `gorm:"size:20;not null" json:"plan_type"`
	Status             string       `gorm:"size:20;not null;default:'pending'" json:"status"`
	GatewayOrderID     *string      `gorm:"size:255;unique" json:"gateway_order_id,omitempty"`
	GatewayPaymentID   *string      `gorm:"size:255" json:"gateway_payment_id,omitempty"`
	Amount             float64      `gorm:"type:numeric(10,2);not null" json:"amount"`
	DurationMultiplier int          `gorm:"default:1" json:"duration_multiplier"`
	CourseIDs          CourseIDList `gorm:"type:text" json:"course_ids"`
	CouponID           *uuid.UUID   `json:"coupon_id,omitempty"`
	StartDate          *time.Time   `json:"start_date,omitempty"`
	EndDate            *time.Time   `json:"end_date,omitempty"`

	Institution Institution `gorm:"foreignkey:InstitutionID" json:"-"`
	Coupon      Coupon      `gorm:"foreignkey:CouponID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
