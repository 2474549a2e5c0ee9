package repository

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mirrorcaps/internal/domain"
)

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

const userSelectColumns = `
	SELECT id, username, email, full_name, password_hash,
	       deposit, interest, withdraw, demo, is_admin, trader_id,
	       created_at, updated_at
`

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.Deposit,
		&user.Interest,
		&user.Withdraw,
		&user.Demo,
		&user.IsAdmin,
		&user.TraderID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

const traderSelectColumns = `
	SELECT id, name, username, bio, specialization, experience, risk_level,
	       win_rate, total_trades, total_copiers, minimum_copy_amount, status,
	       created_at, updated_at
`

func scanTrader(row rowScanner) (*domain.Trader, error) {
	trader := &domain.Trader{}
	err := row.Scan(
		&trader.ID,
		&trader.Name,
		&trader.Username,
		&trader.Bio,
		&trader.Specialization,
		&trader.Experience,
		&trader.RiskLevel,
		&trader.WinRate,
		&trader.TotalTrades,
		&trader.TotalCopiers,
		&trader.MinimumCopyAmount,
		&trader.Status,
		&trader.CreatedAt,
		&trader.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return trader, nil
}

const transactionSelectColumns = `
	SELECT id, type, status, amount, date,
	       user_id, user_email, user_name,
	       wallet_coin, wallet_network, wallet_address, wallet_converted_amount,
	       trade_package, trade_interest_rate, trade_category
`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t         domain.Transaction
		userID    *uuid.UUID
		userEmail *string
		userName  *string
		coin      *string
		network   *string
		address   *string
		converted decimal.NullDecimal
		pkg       *string
		rate      decimal.NullDecimal
		category  *string
	)

	err := row.Scan(
		&t.ID,
		&t.Type,
		&t.Status,
		&t.Amount,
		&t.Date,
		&userID,
		&userEmail,
		&userName,
		&coin,
		&network,
		&address,
		&converted,
		&pkg,
		&rate,
		&category,
	)
	if err != nil {
		return nil, err
	}

	if userID != nil {
		t.User.ID = *userID
	}
	if userEmail != nil {
		t.User.Email = *userEmail
	}
	if userName != nil {
		t.User.Name = *userName
	}

	if coin != nil {
		wallet := &domain.WalletData{Coin: *coin}
		if network != nil {
			wallet.Network = *network
		}
		if address != nil {
			wallet.Address = *address
		}
		if converted.Valid {
			wallet.ConvertedAmount = converted.Decimal
		}
		t.WalletData = wallet
	}

	if category != nil {
		trade := &domain.TradeData{Category: *category}
		if pkg != nil {
			trade.Package = *pkg
		}
		if rate.Valid {
			trade.InterestRate = rate.Decimal
		}
		t.TradeData = trade
	}

	return &t, nil
}
