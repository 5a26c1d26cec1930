package entity

import "time"

// PaymentStatus is the provider-reported payment outcome.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusExpired PaymentStatus = "expired"
)

// SessionState is the provider-reported checkout session lifecycle state.
type SessionState string

const (
	SessionStateInitiated SessionState = "initiated"
	SessionStateCompleted SessionState = "completed"
	SessionStateExpired   SessionState = "expired"
)

// PaymentSession is keyed by the provider-issued checkout session id. It is
// created at checkout initiation and thereafter mutated only by the
// reconciliation path, which must tolerate replays.
type PaymentSession struct {
	ID            string // provider session id
	BookingID     string
	UserID        string
	Amount        float64
	Currency      string
	PaymentStatus PaymentStatus
	Status        SessionState
	Metadata      map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *PaymentSession) Paid() bool {
	return p.PaymentStatus == PaymentStatusPaid
}
