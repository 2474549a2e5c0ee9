package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mirrorcaps/internal/domain"
)

// maxTxAttempts bounds the retry loop for serialization failures before the
// conflict is surfaced to the caller
const maxTxAttempts = 3

// LedgerStoreImpl implements domain.LedgerStore on PostgreSQL. Every unit of
// work runs in a repeatable-read transaction; row locks taken by the
// ForUpdate reads serialize concurrent settlements of the same user or
// transaction.
type LedgerStoreImpl struct {
	db *pgxpool.Pool
}

// NewLedgerStore creates a new LedgerStore
func NewLedgerStore(db *pgxpool.Pool) domain.LedgerStore {
	return &LedgerStoreImpl{db: db}
}

// WithinTx runs fn inside a database transaction. Serialization failures and
// deadlocks are retried a bounded number of times with the unit re-driven
// from scratch; when attempts run out the caller gets ErrConcurrentModification.
func (s *LedgerStoreImpl) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.LedgerTx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isRetryableConflict(err) {
			return err
		}
	}
	return fmt.Errorf("ledger transaction gave up after %d attempts: %w", maxTxAttempts, domain.ErrConcurrentModification)
}

func (s *LedgerStoreImpl) runTx(ctx context.Context, fn func(ctx context.Context, tx domain.LedgerTx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	return nil
}

// isRetryableConflict matches serialization failures (40001) and deadlocks
// (40P01); everything else aborts without retry
func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// ledgerTx implements domain.LedgerTx on one pgx transaction
type ledgerTx struct {
	tx pgx.Tx
}

// TransactionForUpdate loads a transaction row and locks it until commit
func (l *ledgerTx) TransactionForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := l.tx.QueryRow(ctx, transactionSelectColumns+`
		FROM transactions
		WHERE id = $1
		FOR UPDATE
	`, id)

	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}
	return t, nil
}

// SetTransactionStatus transitions a pending transaction to a terminal
// status. The WHERE guard makes the transition one-way: a row that already
// left pending is reported as ErrAlreadySettled.
func (l *ledgerTx) SetTransactionStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	tag, err := l.tx.Exec(ctx, `
		UPDATE transactions
		SET status = $2
		WHERE id = $1 AND status = 'pending'
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadySettled
	}
	return nil
}

// UserForUpdate loads a user row and locks it until commit
func (l *ledgerTx) UserForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := l.tx.QueryRow(ctx, userSelectColumns+`
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	return user, nil
}

// DepositorsForUpdate locks every active depositor in id order. The stable
// ordering keeps overlapping disbursement passes from acquiring the same row
// locks in opposite order.
func (l *ledgerTx) DepositorsForUpdate(ctx context.Context) ([]*domain.User, error) {
	rows, err := l.tx.Query(ctx, userSelectColumns+`
		FROM users
		WHERE deposit > 0
		ORDER BY id ASC
		FOR UPDATE
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query depositors: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan depositor: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating depositors: %w", err)
	}
	return users, nil
}

// UpdateBalances persists the user's monetary fields inside the transaction
func (l *ledgerTx) UpdateBalances(ctx context.Context, user *domain.User) error {
	_, err := l.tx.Exec(ctx, `
		UPDATE users
		SET deposit = $2, interest = $3, withdraw = $4, updated_at = NOW()
		WHERE id = $1
	`, user.ID, user.Deposit, user.Interest, user.Withdraw)
	if err != nil {
		return fmt.Errorf("failed to update balances for user %s: %w", user.ID, err)
	}
	return nil
}

// TraderByID loads a trader within the transaction snapshot
func (l *ledgerTx) TraderByID(ctx context.Context, id uuid.UUID) (*domain.Trader, error) {
	row := l.tx.QueryRow(ctx, traderSelectColumns+`
		FROM traders
		WHERE id = $1
	`, id)

	trader, err := scanTrader(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("trader %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get trader: %w", err)
	}
	return trader, nil
}
