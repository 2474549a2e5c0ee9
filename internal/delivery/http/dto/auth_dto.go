package dto

import (
	"mirrorcaps/internal/domain"
)

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=20"`
	Email     string `json:"email" validate:"required,email,max=225"`
	Password  string `json:"password" validate:"required,min=5,max=20"`
	FirstName string `json:"first_name" validate:"max=30"`
	LastName  string `json:"last_name" validate:"max=30"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string      `json:"token"`
	User  *UserOutput `json:"user"`
}

// UserOutput represents user data in API responses
type UserOutput struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Deposit  string  `json:"deposit"`
	Interest string  `json:"interest"`
	Withdraw string  `json:"withdraw"`
	Demo     string  `json:"demo"`
	IsAdmin  bool    `json:"is_admin"`
	TraderID *string `json:"trader_id,omitempty"`
}

// NewUserOutput maps a domain user to its API shape
func NewUserOutput(u *domain.User) *UserOutput {
	out := &UserOutput{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Deposit:  u.Deposit.String(),
		Interest: u.Interest.String(),
		Withdraw: u.Withdraw.String(),
		Demo:     u.Demo.String(),
		IsAdmin:  u.IsAdmin,
	}
	if u.TraderID != nil {
		id := u.TraderID.String()
		out.TraderID = &id
	}
	return out
}
