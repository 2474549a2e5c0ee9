package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents an account holder with its ledger balances
type User struct {
	ID           uuid.UUID       `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	FullName     string          `json:"full_name"`
	PasswordHash string          `json:"-"` // Never expose password hash in JSON
	Deposit      decimal.Decimal `json:"deposit"`  // principal
	Interest     decimal.Decimal `json:"interest"` // accrued interest, kept apart from principal
	Withdraw     decimal.Decimal `json:"withdraw"` // cumulative withdrawn
	Demo         decimal.Decimal `json:"demo"`     // simulated paper-trading balance
	IsAdmin      bool            `json:"is_admin"`
	TraderID     *uuid.UUID      `json:"trader_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TotalAvailable is the amount a withdrawal settlement can draw against.
// Drawdown order is deposit first, then interest.
func (u *User) TotalAvailable() decimal.Decimal {
	return u.Deposit.Add(u.Interest)
}

// Actor is the resolved request identity attached by the auth middleware
type Actor struct {
	ID      uuid.UUID
	Email   string
	IsAdmin bool
}

// Role returns the actor role recorded in audit events
func (a Actor) Role() string {
	if a.IsAdmin {
		return "admin"
	}
	return "user"
}

// CanActFor reports whether the actor may touch the given user's records
func (a Actor) CanActFor(userID uuid.UUID, email string) bool {
	if a.IsAdmin {
		return true
	}
	if userID != uuid.Nil && a.ID == userID {
		return true
	}
	return email != "" && a.Email == email
}
