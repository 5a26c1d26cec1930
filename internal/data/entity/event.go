package entity

import "time"

type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
)

type Event struct {
	ID          string
	CreatorID   string
	Title       string
	Description string
	Date        string // ISO-8601 datetime of the event itself
	Location    string
	Capacity    int // informational only, not enforced against tiers
	Category    string
	ImageURL    *string
	Status      EventStatus
	CreatedAt   time.Time
}

func (e *Event) Active() bool {
	return e.Status == EventStatusActive
}

// EditableBy reports whether the user may mutate the event: its creator, or
// an admin.
func (e *Event) EditableBy(userID string, role UserRole) bool {
	return e.CreatorID == userID || role.CanModerate()
}
