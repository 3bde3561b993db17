package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	config "github.com/edulisthq/institute_listing/configs"
	"github.com/redis/go-redis/v9"
)

// PaymentContext is the snapshot of what a gateway order is for, written
// once at order creation and never re-derived. If it expires before the
// payment is verified, the activation engine falls back to the course ids
// stored on the subscription row itself.
type PaymentContext struct {
	InstitutionID       string    `json:"institution_id"`
	SelectedCourseIDs   []string  `json:"selected_course_ids"`
	TotalAmount         float64   `json:"total_amount"`
	PlanType            string    `json:"plan_type"`
	PricePerCourse      float64   `json:"price_per_course"`
	CouponCode          string    `json:"coupon_code,omitempty"`
	InstitutionCategory string    `json:"institution_category,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

const paymentContextTTL = 60 * time.Minute

type PaymentCache struct {
	cli *redis.Client
}

var Payments *PaymentCache

func InitPaymentCache() {
	addr := config.Config("REDIS_ADDR")
	if addr == "" {
		log.Println("⚠️ REDIS_ADDR not set, payment context caching disabled.")
		return
	}

	db := 0
	if raw := config.Config("REDIS_DB"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			db = parsed
		}
	}

	cli := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Config("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		log.Printf("🔥 Failed to connect to Redis at %s: %v", addr, err)
		return
	}

	Payments = &PaymentCache{cli: cli}
	log.Println("✅ Payment context cache connected successfully")
}

func contextKey(orderID string) string {
	return "payment_ctx:" + orderID
}

func (p *PaymentCache) Set(ctx context.Context, orderID string, pctx *PaymentContext) error {
	if p == nil || p.cli == nil {
		return errors.New("payment cache is not configured")
	}
	data, err := json.Marshal(pctx)
	if err != nil {
		return err
	}
	return p.cli.Set(ctx, contextKey(orderID), data, paymentContextTTL).Err()
}

// Get returns (nil, nil) on a cache miss or when the cache is not
// configured, so callers can treat both the same way.
func (p *PaymentCache) Get(ctx context.Context, orderID string) (*PaymentContext, error) {
	if p == nil || p.cli == nil {
		return nil, nil
	}
	data, err := p.cli.Get(ctx, contextKey(orderID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var pctx PaymentContext
	if err := json.Unmarshal([]byte(data), &pctx); err != nil {
		return nil, err
	}
	return &pctx, nil
}

func (p *PaymentCache) Delete(ctx context.Context, orderID string) error {
	if p == nil || p.cli == nil {
		return nil
	}
	return p.cli.Del(ctx, contextKey(orderID)).Err()
}
