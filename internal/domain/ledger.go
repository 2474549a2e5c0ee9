package domain

import (
	"context"

	"github.com/google/uuid"
)

// LedgerStore exposes the multi-document atomic-commit primitive the
// settlement engine runs on. Everything done inside fn commits together or
// not at all; a ConcurrentModification surfaced from WithinTx means the whole
// unit was rolled back and may be retried from scratch.
type LedgerStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// LedgerTx is the view of the ledger inside one atomic unit. ForUpdate reads
// serialize against concurrent settlements of the same row: two operations
// touching the same user cannot interleave their read-modify-write cycles.
type LedgerTx interface {
	// TransactionForUpdate loads and locks a transaction row
	TransactionForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// SetTransactionStatus transitions pending -> status. Returns
	// ErrAlreadySettled if the row is no longer pending.
	SetTransactionStatus(ctx context.Context, id uuid.UUID, status TransactionStatus) error

	// UserForUpdate loads and locks a user row
	UserForUpdate(ctx context.Context, id uuid.UUID) (*User, error)

	// DepositorsForUpdate loads and locks every user with deposit > 0, in
	// stable id order so overlapping passes acquire locks consistently
	DepositorsForUpdate(ctx context.Context) ([]*User, error)

	// UpdateBalances persists the user's monetary fields
	UpdateBalances(ctx context.Context, user *User) error

	// TraderByID loads a trader inside the transaction snapshot
	TraderByID(ctx context.Context, id uuid.UUID) (*Trader, error)
}
