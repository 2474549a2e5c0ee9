package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data operations outside of a
// ledger transaction. Balance mutations tied to a transaction go through
// LedgerTx instead.
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetAll retrieves all users
	GetAll(ctx context.Context) ([]*User, error)

	// AssignTrader sets or clears the user's copied trader
	AssignTrader(ctx context.Context, userID uuid.UUID, traderID *uuid.UUID) error

	// UpdateDemoBalance overwrites the user's demo balance
	UpdateDemoBalance(ctx context.Context, email string, balance decimal.Decimal) error
}

// TraderRepository defines the interface for trader profile operations
type TraderRepository interface {
	// Create creates a new trader profile
	Create(ctx context.Context, trader *Trader) error

	// GetByID retrieves a trader by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Trader, error)

	// GetAll retrieves all trader profiles
	GetAll(ctx context.Context) ([]*Trader, error)

	// AdjustCopiers moves the copier counter by delta (copy = +1, drop = -1)
	AdjustCopiers(ctx context.Context, id uuid.UUID, delta int) error
}

// TransactionRepository defines the interface for transaction reads and
// creation. Status transitions never happen here; they are owned by the
// settlement engine via LedgerTx.
type TransactionRepository interface {
	// Create creates a new pending transaction
	Create(ctx context.Context, t *Transaction) error

	// GetByID retrieves a transaction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// GetAll retrieves all transactions, most recent first
	GetAll(ctx context.Context) ([]*Transaction, error)

	// GetByType retrieves all transactions of one type
	GetByType(ctx context.Context, txType TransactionType) ([]*Transaction, error)

	// GetByUserEmail retrieves all transactions snapshotted for the email
	GetByUserEmail(ctx context.Context, email string) ([]*Transaction, error)

	// HasPending reports whether the user already has a pending transaction of
	// the given type
	HasPending(ctx context.Context, userID uuid.UUID, txType TransactionType) (bool, error)

	// ListTradesByCategory retrieves trades of a category created at or after
	// the given time
	ListTradesByCategory(ctx context.Context, category string, since time.Time) ([]*Transaction, error)

	// ListStalePending retrieves pending transactions older than the cutoff
	ListStalePending(ctx context.Context, olderThan time.Duration) ([]*Transaction, error)
}

// DemoTradeRepository defines the interface for demo trade records
type DemoTradeRepository interface {
	// Create saves a new demo trade
	Create(ctx context.Context, trade *DemoTrade) error

	// GetByEmail retrieves all demo trades for a user, most recent first
	GetByEmail(ctx context.Context, email string) ([]*DemoTrade, error)
}

// ActivityLogRepository defines the interface for the audit trail store
type ActivityLogRepository interface {
	// Save appends an activity log entry
	Save(ctx context.Context, entry *ActivityLog) error
}
