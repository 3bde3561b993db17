package payments

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	config "github.com/edulisthq/institute_listing/configs"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

type RazorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateRazorpayOrder registers an order with the gateway. The amount is
// given in major units and converted to paise here.
func CreateRazorpayOrder(amount float64, currency string, receipt string) (*RazorpayOrder, error) {
	keyID := config.Config("RAZORPAY_KEY_ID")
	keySecret := config.Config("RAZORPAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID or RAZORPAY_KEY_SECRET is not set in .env")
	}

	payload := createOrderRequest{
		Amount:   int64(math.Round(amount * 100)),
		Currency: currency,
		Receipt:  receipt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %v", err)
	}

	req, err := http.NewRequest("POST", razorpayBaseURL+"/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %v", err)
	}
	req.SetBasicAuth(keyID, keySecret)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send order request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Razorpay API Error: %s", string(respBody))
		return nil, fmt.Errorf("razorpay orders API returned non-200 status: %d", resp.StatusCode)
	}

	var order RazorpayOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order response: %v", err)
	}

	log.Println("✅ Razorpay order created:", order.ID)
	return &order, nil
}

// VerifyWebhookSignature checks the signature the gateway sends with each
// webhook delivery, computed over the exact payload bytes.
func VerifyWebhookSignature(body []byte, signature string) bool {
	secret := config.Config("RAZORPAY_WEBHOOK_SECRET")
	if secret == "" || signature == "" {
		return false
	}
	return verifySignature(body, signature, secret)
}

// VerifyCheckoutSignature checks the signature the gateway's checkout
// library hands to the client after a successful payment, computed over
// "orderID|paymentID" with the API key secret.
func VerifyCheckoutSignature(orderID, paymentID, signature string) bool {
	secret := config.Config("RAZORPAY_KEY_SECRET")
	if secret == "" || signature == "" {
		return false
	}
	return verifySignature([]byte(orderID+"|"+paymentID), signature, secret)
}

func verifySignature(message []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
