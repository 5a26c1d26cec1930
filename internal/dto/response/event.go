package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EventResponse struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creator_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Category    string    `json:"category"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	// Joined creator info; empty on listings that skip the join.
	CreatorName  string `json:"creator_name,omitempty"`
	CreatorEmail string `json:"creator_email,omitempty"`
}

func EventToResponse(e *entity.Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		CreatorID:   e.CreatorID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Capacity:    e.Capacity,
		Category:    e.Category,
		ImageURL:    e.ImageURL,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
	}
}

func EventWithCreatorToResponse(e *entity.Event, creator *entity.User) EventResponse {
	resp := EventToResponse(e)
	if creator != nil {
		resp.CreatorName = creator.Name
		resp.CreatorEmail = creator.Email
	}
	return resp
}
