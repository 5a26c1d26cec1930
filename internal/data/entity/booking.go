package entity

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking transitions only pending -> confirmed. Records are never deleted,
// only status-transitioned.
type Booking struct {
	ID               string
	UserID           string
	EventID          string
	TierID           string
	Quantity         int
	TotalPrice       float64
	Status           BookingStatus
	PaymentSessionID *string
	RedemptionToken  *string // present iff status is confirmed
	CreatedAt        time.Time
}

func (b *Booking) Pending() bool {
	return b.Status == BookingStatusPending
}

func (b *Booking) Confirmed() bool {
	return b.Status == BookingStatusConfirmed
}
