package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"mirrorcaps/internal/domain"
)

// DemoTradeRepositoryImpl implements the DemoTradeRepository interface
type DemoTradeRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewDemoTradeRepository creates a new DemoTradeRepository
func NewDemoTradeRepository(db *pgxpool.Pool) domain.DemoTradeRepository {
	return &DemoTradeRepositoryImpl{db: db}
}

// Create saves a new demo trade
func (r *DemoTradeRepositoryImpl) Create(ctx context.Context, trade *domain.DemoTrade) error {
	query := `
		INSERT INTO demo_trades (
			id, email, symbol, market_direction, amount, profit_percent, profit, duration, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := r.db.Exec(ctx, query,
		trade.ID,
		trade.Email,
		trade.Symbol,
		trade.MarketDirection,
		trade.Amount,
		trade.ProfitPercent,
		trade.Profit,
		trade.Duration,
		trade.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create demo trade: %w", err)
	}

	return nil
}

// GetByEmail retrieves all demo trades for a user, most recent first
func (r *DemoTradeRepositoryImpl) GetByEmail(ctx context.Context, email string) ([]*domain.DemoTrade, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, email, symbol, market_direction, amount, profit_percent, profit, duration, created_at
		FROM demo_trades
		WHERE email = $1
		ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query demo trades: %w", err)
	}
	defer rows.Close()

	var trades []*domain.DemoTrade
	for rows.Next() {
		trade := &domain.DemoTrade{}
		err := rows.Scan(
			&trade.ID,
			&trade.Email,
			&trade.Symbol,
			&trade.MarketDirection,
			&trade.Amount,
			&trade.ProfitPercent,
			&trade.Profit,
			&trade.Duration,
			&trade.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan demo trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating demo trades: %w", err)
	}

	return trades, nil
}
