package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType discriminates the three transaction subtypes
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeTrade      TransactionType = "trade"
)

// TransactionStatus is the settlement state of a transaction.
// Transitions are one-way: pending -> success | rejected.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusSuccess  TransactionStatus = "success"
	StatusRejected TransactionStatus = "rejected"
)

// UserSnapshot is a point-in-time copy of the requesting user taken when the
// transaction is created. It is a historical record and is never re-synced
// with the live User document.
type UserSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// WalletData carries the coin details of a deposit or withdrawal
type WalletData struct {
	Coin            string          `json:"coin"`
	Network         string          `json:"network"`
	Address         string          `json:"address"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
}

// TradeData carries the package details of a trade transaction
type TradeData struct {
	Package      string          `json:"package"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Category     string          `json:"category"`
}

// Transaction is an append-mostly ledger record. Once it leaves the pending
// state it can never be settled again.
type Transaction struct {
	ID         uuid.UUID         `json:"id"`
	Type       TransactionType   `json:"type"`
	Status     TransactionStatus `json:"status"`
	Amount     decimal.Decimal   `json:"amount"`
	Date       time.Time         `json:"date"`
	User       UserSnapshot      `json:"user"`
	WalletData *WalletData       `json:"wallet_data,omitempty"`
	TradeData  *TradeData        `json:"trade_data,omitempty"`
}

// Terminal reports whether the transaction has reached a terminal status
func (t *Transaction) Terminal() bool {
	return t.Status != StatusPending
}
