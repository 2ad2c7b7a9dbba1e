package dto

import (
	"time"

	"github.com/fieldops/field-report-service/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminUserUpdateRequest is a partial user edit; omitted fields stay as they are.
type AdminUserUpdateRequest struct {
	Name             *string `json:"name"`
	IsAdmin          *bool   `json:"is_admin"`
	AccountActivated *bool   `json:"account_activated"`
}

// UserResponse is the account view returned to clients.
type UserResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Email            *string `json:"email"`
	IsAdmin          bool    `json:"is_admin"`
	AccountActivated bool    `json:"account_activated"`
}

// UserSearchResult is one directory match.
type UserSearchResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewUserResponse renders a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		IsAdmin:          u.IsAdmin,
		AccountActivated: u.AccountActivated,
	}
}
