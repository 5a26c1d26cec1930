package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   *string   `json:"picture,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func UserToResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type SessionResponse struct {
	Success   bool   `json:"success"`
	IsNewUser bool   `json:"is_new_user"`
	Token     string `json:"-"` // set as cookie, not in the body
}

type SelectRoleResponse struct {
	Success bool   `json:"success"`
	Role    string `json:"role"`
}
