package request

type SelectRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=attendee organizer"`
}
