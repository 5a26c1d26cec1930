package request

type CreateBookingRequest struct {
	EventID  string `json:"event_id" validate:"required,uuid4"`
	TierID   string `json:"tier_id" validate:"required,uuid4"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

type CheckoutRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid4"`
	OriginURL string `json:"origin_url" validate:"required,url"`
}
