package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

var defaultPlanPrices = map[string]float64{
	"monthly": 99,
	"yearly":  999,
}

// PlanUnitPrice returns the per-course price for a plan type. Prices can be
// overridden with PLAN_PRICE_MONTHLY / PLAN_PRICE_YEARLY.
func PlanUnitPrice(planType string) (float64, bool) {
	if raw := Config("PLAN_PRICE_" + strings.ToUpper(planType)); raw != "" {
		if price, err := strconv.ParseFloat(raw, 64); err == nil && price > 0 {
			return price, true
		}
		log.Printf("⚠️ Ignoring invalid price override for plan %s", planType)
	}
	price, ok := defaultPlanPrices[planType]
	return price, ok
}
