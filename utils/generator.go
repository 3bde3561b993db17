package utils

import (
	"math/rand"
	"time"
)

const receiptTokenLength = 14
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReceiptToken returns a unique receipt reference for a gateway
// order. The gateway enforces receipt uniqueness per account, so the token
// carries a timestamp component in addition to the random part.
func GenerateReceiptToken() string {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	b := make([]byte, receiptTokenLength)
	for i := range b {
		b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
	}
	return "rcpt_" + time.Now().Format("20060102") + "_" + string(b)
}
