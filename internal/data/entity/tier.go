package entity

// TicketTier is a priced category of tickets for one event with its own
// inventory counter. Invariant after every committed operation:
// 0 <= QuantitySold <= QuantityAvailable.
type TicketTier struct {
	ID                string
	EventID           string
	Name              string
	Price             float64 // 0 denotes a free tier
	QuantityAvailable int
	QuantitySold      int
}

func (t *TicketTier) Remaining() int {
	return t.QuantityAvailable - t.QuantitySold
}

func (t *TicketTier) Free() bool {
	return t.Price == 0
}
