package dto

import "github.com/shopspring/decimal"

// CreateDemoTradeRequest represents a demo trade to execute immediately
type CreateDemoTradeRequest struct {
	Symbol          string          `json:"symbol" validate:"required,max=20"`
	MarketDirection string          `json:"market_direction" validate:"required,oneof=buy sell"`
	Amount          decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Profit          decimal.Decimal `json:"profit" validate:"required,gt=0"`
	Duration        int             `json:"duration" validate:"required,gt=0"`
}
