package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trader represents a copyable trader profile.
// Read-mostly from the settlement engine's perspective; only the copier
// counter is written outside of profile administration, and that happens
// when a user copies or drops the trader, never during settlement.
type Trader struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Username          string          `json:"username"`
	Bio               string          `json:"bio"`
	Specialization    string          `json:"specialization"`
	Experience        int             `json:"experience"` // years
	RiskLevel         string          `json:"risk_level"`
	WinRate           decimal.Decimal `json:"win_rate"`
	TotalTrades       int             `json:"total_trades"`
	TotalCopiers      int             `json:"total_copiers"`
	MinimumCopyAmount decimal.Decimal `json:"minimum_copy_amount"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Specialization constants (asset classes a trade category must match)
const (
	SpecializationForex       = "Forex"
	SpecializationCrypto      = "Crypto"
	SpecializationStocks      = "Stocks"
	SpecializationCommodities = "Commodities"
	SpecializationOptions     = "Options"
	SpecializationIndices     = "Indices"
	SpecializationMixed       = "Mixed"
)

// TraderStatus constants
const (
	TraderStatusActive     = "active"
	TraderStatusPaused     = "paused"
	TraderStatusTerminated = "terminated"
)

// RiskLevel constants
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)
