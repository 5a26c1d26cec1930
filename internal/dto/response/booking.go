package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type BookingResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	EventID          string    `json:"event_id"`
	TierID           string    `json:"tier_id"`
	Quantity         int       `json:"quantity"`
	TotalPrice       float64   `json:"total_price"`
	Status           string    `json:"status"`
	PaymentSessionID *string   `json:"payment_session_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`

	// Joined details for listings.
	EventTitle    string `json:"event_title,omitempty"`
	EventDate     string `json:"event_date,omitempty"`
	EventLocation string `json:"event_location,omitempty"`
	TierName      string `json:"tier_name,omitempty"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		UserID:           b.UserID,
		EventID:          b.EventID,
		TierID:           b.TierID,
		Quantity:         b.Quantity,
		TotalPrice:       b.TotalPrice,
		Status:           string(b.Status),
		PaymentSessionID: b.PaymentSessionID,
		CreatedAt:        b.CreatedAt,
	}
}

// CreateBookingResponse tells the caller whether it must still initiate
// payment for the booking.
type CreateBookingResponse struct {
	Booking         BookingResponse `json:"booking"`
	RequiresPayment bool            `json:"requires_payment"`
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

type PaymentStatusResponse struct {
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	Amount        float64 `json:"amount_total"`
	Currency      string  `json:"currency"`
}
