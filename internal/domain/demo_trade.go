package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DemoTrade is an ephemeral simulation record. It only touches the user's
// demo balance at creation time and never enters settlement.
type DemoTrade struct {
	ID              uuid.UUID       `json:"id"`
	Email           string          `json:"email"`
	Symbol          string          `json:"symbol"`
	MarketDirection string          `json:"market_direction"`
	Amount          decimal.Decimal `json:"amount"`
	ProfitPercent   decimal.Decimal `json:"profit_percent"`
	Profit          decimal.Decimal `json:"profit"`
	Duration        int             `json:"duration"` // seconds
	CreatedAt       time.Time       `json:"created_at"`
}

// MarketDirection constants
const (
	DirectionBuy  = "buy"
	DirectionSell = "sell"
)
