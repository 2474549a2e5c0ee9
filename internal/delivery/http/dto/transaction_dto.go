package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDepositRequest represents a new deposit submission
type CreateDepositRequest struct {
	Amount          decimal.Decimal `json:"amount" validate:"required,gt=0"`
	ConvertedAmount decimal.Decimal `json:"converted_amount" validate:"omitempty,gt=0"`
	Coin            string          `json:"coin" validate:"required,max=20"`
}

// CreateWithdrawalRequest represents a new withdrawal submission. UserID is
// only honored for admins acting on behalf of a user.
type CreateWithdrawalRequest struct {
	UserID          *uuid.UUID      `json:"user_id,omitempty"`
	Amount          decimal.Decimal `json:"amount" validate:"required,gt=0"`
	ConvertedAmount decimal.Decimal `json:"converted_amount" validate:"omitempty,gt=0"`
	Coin            string          `json:"coin" validate:"required,max=20"`
	Network         string          `json:"network" validate:"required,max=50"`
	Address         string          `json:"address" validate:"required,max=120"`
}

// SettleRequest carries the admin decision for a pending transaction
type SettleRequest struct {
	Decision string `json:"decision" validate:"required,oneof=success rejected"`
}

// CreateTradeRequest represents a new trade package
type CreateTradeRequest struct {
	Package      string          `json:"package" validate:"required,max=50"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"required,gt=0,lte=1"`
	Category     string          `json:"category" validate:"required,oneof=Forex Crypto Stocks Commodities Options Indices Mixed"`
}
