package response

import "event-ticketing/internal/data/entity"

type TierResponse struct {
	ID                string  `json:"id"`
	EventID           string  `json:"event_id"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	QuantityAvailable int     `json:"quantity_available"`
	QuantitySold      int     `json:"quantity_sold"`
}

func TierToResponse(t *entity.TicketTier) TierResponse {
	return TierResponse{
		ID:                t.ID,
		EventID:           t.EventID,
		Name:              t.Name,
		Price:             t.Price,
		QuantityAvailable: t.QuantityAvailable,
		QuantitySold:      t.QuantitySold,
	}
}
