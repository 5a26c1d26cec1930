package entity

import "time"

type UserRole string

const (
	RoleAttendee  UserRole = "attendee"
	RoleOrganizer UserRole = "organizer"
	RoleAdmin     UserRole = "admin"
)

// CanPublishEvents reports whether the role may create events and tiers.
func (r UserRole) CanPublishEvents() bool {
	return r == RoleOrganizer || r == RoleAdmin
}

// CanModerate reports whether the role may mutate resources it does not own.
func (r UserRole) CanModerate() bool {
	return r == RoleAdmin
}

// Selectable reports whether a user may self-select into the role. The admin
// role is never acquirable this way.
func (r UserRole) Selectable() bool {
	return r == RoleAttendee || r == RoleOrganizer
}

func (r UserRole) Valid() bool {
	return r == RoleAttendee || r == RoleOrganizer || r == RoleAdmin
}

type User struct {
	ID        string
	Email     string
	Name      string
	Picture   *string
	Role      UserRole
	CreatedAt time.Time
}
