package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mirrorcaps/internal/domain"
)

// TransactionRepositoryImpl implements the TransactionRepository interface.
// Status transitions are deliberately absent here: the settlement engine owns
// them through the ledger store.
type TransactionRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *pgxpool.Pool) domain.TransactionRepository {
	return &TransactionRepositoryImpl{db: db}
}

// Create creates a new pending transaction
func (r *TransactionRepositoryImpl) Create(ctx context.Context, t *domain.Transaction) error {
	var (
		userID    *uuid.UUID
		userEmail *string
		userName  *string
	)
	if t.User.ID != uuid.Nil {
		userID = &t.User.ID
		userEmail = &t.User.Email
		userName = &t.User.Name
	}

	query := `
		INSERT INTO transactions (
			id, type, status, amount, date,
			user_id, user_email, user_name,
			wallet_coin, wallet_network, wallet_address, wallet_converted_amount,
			trade_package, trade_interest_rate, trade_category
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	args := []any{
		t.ID, t.Type, t.Status, t.Amount, t.Date,
		userID, userEmail, userName,
	}
	if t.WalletData != nil {
		args = append(args, t.WalletData.Coin, t.WalletData.Network, t.WalletData.Address, t.WalletData.ConvertedAmount)
	} else {
		args = append(args, nil, nil, nil, nil)
	}
	if t.TradeData != nil {
		args = append(args, t.TradeData.Package, t.TradeData.InterestRate, t.TradeData.Category)
	} else {
		args = append(args, nil, nil, nil)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx, transactionSelectColumns+`
		FROM transactions
		WHERE id = $1
	`, id)

	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}
	return t, nil
}

// GetAll retrieves all transactions, most recent first
func (r *TransactionRepositoryImpl) GetAll(ctx context.Context) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, transactionSelectColumns+`
		FROM transactions
		ORDER BY date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// GetByType retrieves all transactions of one type, oldest first
func (r *TransactionRepositoryImpl) GetByType(ctx context.Context, txType domain.TransactionType) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, transactionSelectColumns+`
		FROM transactions
		WHERE type = $1
		ORDER BY date ASC
	`, txType)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by type: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// GetByUserEmail retrieves all transactions snapshotted for the email
func (r *TransactionRepositoryImpl) GetByUserEmail(ctx context.Context, email string) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, transactionSelectColumns+`
		FROM transactions
		WHERE user_email = $1
		ORDER BY date DESC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by user: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// HasPending reports whether the user already has a pending transaction of
// the given type
func (r *TransactionRepositoryImpl) HasPending(ctx context.Context, userID uuid.UUID, txType domain.TransactionType) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND type = $2 AND status = 'pending'
		)
	`, userID, txType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending transactions: %w", err)
	}
	return exists, nil
}

// ListTradesByCategory retrieves trades of a category created at or after the
// given time. Used to show a copier the trades their trader took part in.
func (r *TransactionRepositoryImpl) ListTradesByCategory(ctx context.Context, category string, since time.Time) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, transactionSelectColumns+`
		FROM transactions
		WHERE type = 'trade' AND trade_category = $1 AND date >= $2
		ORDER BY date ASC
	`, category, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades by category: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListStalePending retrieves pending transactions older than the cutoff
func (r *TransactionRepositoryImpl) ListStalePending(ctx context.Context, olderThan time.Duration) ([]*domain.Transaction, error) {
	cutoff := time.Now().Add(-olderThan)

	rows, err := r.db.Query(ctx, transactionSelectColumns+`
		FROM transactions
		WHERE status = 'pending' AND date < $1
		ORDER BY date ASC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale pending transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var ts []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		ts = append(ts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return ts, nil
}
