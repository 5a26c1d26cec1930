package request

type CreateTierRequest struct {
	Name              string  `json:"name" validate:"required,min=1,max=100"`
	Price             float64 `json:"price" validate:"gte=0"`
	QuantityAvailable int     `json:"quantity_available" validate:"required,gt=0"`
}
