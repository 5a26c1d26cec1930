package utils

import (
	"github.com/google/uuid"
)

// ==================== ID & TOKEN ====================

func GenerateID() string {
	return uuid.New().String()
}

// GenerateRedemptionToken mints the opaque token stamped on a confirmed
// booking. It is the payload later encoded into the entry QR image.
func GenerateRedemptionToken() string {
	return uuid.New().String()
}
