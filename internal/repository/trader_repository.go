package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mirrorcaps/internal/domain"
)

// TraderRepositoryImpl implements the TraderRepository interface
type TraderRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewTraderRepository creates a new TraderRepository
func NewTraderRepository(db *pgxpool.Pool) domain.TraderRepository {
	return &TraderRepositoryImpl{db: db}
}

// Create creates a new trader profile
func (r *TraderRepositoryImpl) Create(ctx context.Context, trader *domain.Trader) error {
	query := `
		INSERT INTO traders (
			id, name, username, bio, specialization, experience, risk_level,
			win_rate, total_trades, total_copiers, minimum_copy_amount, status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	_, err := r.db.Exec(ctx, query,
		trader.ID,
		trader.Name,
		trader.Username,
		trader.Bio,
		trader.Specialization,
		trader.Experience,
		trader.RiskLevel,
		trader.WinRate,
		trader.TotalTrades,
		trader.TotalCopiers,
		trader.MinimumCopyAmount,
		trader.Status,
		trader.CreatedAt,
		trader.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create trader: %w", err)
	}

	return nil
}

// GetByID retrieves a trader by ID
func (r *TraderRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trader, error) {
	row := r.db.QueryRow(ctx, traderSelectColumns+`
		FROM traders
		WHERE id = $1
	`, id)

	trader, err := scanTrader(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("trader %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get trader by ID: %w", err)
	}
	return trader, nil
}

// GetAll retrieves all trader profiles
func (r *TraderRepositoryImpl) GetAll(ctx context.Context) ([]*domain.Trader, error) {
	rows, err := r.db.Query(ctx, traderSelectColumns+`
		FROM traders
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query traders: %w", err)
	}
	defer rows.Close()

	var traders []*domain.Trader
	for rows.Next() {
		trader, err := scanTrader(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trader: %w", err)
		}
		traders = append(traders, trader)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating traders: %w", err)
	}

	return traders, nil
}

// AdjustCopiers moves the copier counter by delta, clamped at zero
func (r *TraderRepositoryImpl) AdjustCopiers(ctx context.Context, id uuid.UUID, delta int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE traders
		SET total_copiers = GREATEST(total_copiers + $2, 0), updated_at = NOW()
		WHERE id = $1
	`, id, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust copier count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trader %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
