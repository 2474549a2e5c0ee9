package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTraderRequest represents a new trader profile
type CreateTraderRequest struct {
	Name              string          `json:"name" validate:"required,max=60"`
	Username          string          `json:"username" validate:"required,min=3,max=20"`
	Bio               string          `json:"bio" validate:"required,max=500"`
	Specialization    string          `json:"specialization" validate:"required,oneof=Forex Crypto Stocks Commodities Options Indices Mixed"`
	Experience        int             `json:"experience" validate:"required,gte=1"`
	RiskLevel         string          `json:"risk_level" validate:"required,oneof=Low Medium High"`
	WinRate           decimal.Decimal `json:"win_rate" validate:"gte=0,lte=100"`
	MinimumCopyAmount decimal.Decimal `json:"minimum_copy_amount" validate:"gte=0"`
}

// CopyTraderRequest assigns a trader to the requesting user. A null trader id
// drops the current assignment.
type CopyTraderRequest struct {
	TraderID *uuid.UUID `json:"trader_id"`
}
