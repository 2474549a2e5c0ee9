package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mirrorcaps/internal/domain"
)

// defaultProfitPercent mirrors the fixed payout rate of the demo simulator
var defaultProfitPercent = decimal.NewFromInt(81)

// demoResetBalance is the balance a demo account is topped up to
var demoResetBalance = decimal.NewFromInt(10000)

// DemoTradeService creates demo trades and settles them immediately against
// the user's demo balance with a simulated coin-flip outcome. Demo balances
// sit outside the settlement core: the single update here is not a settlement
// and carries no transactional guarantee.
type DemoTradeService struct {
	trades domain.DemoTradeRepository
	users  domain.UserRepository
	rng    func() float64
	logger *zap.Logger
}

// NewDemoTradeService creates a new DemoTradeService. rng may be nil, in
// which case the default random source decides trade outcomes.
func NewDemoTradeService(
	trades domain.DemoTradeRepository,
	users domain.UserRepository,
	rng func() float64,
	logger *zap.Logger,
) *DemoTradeService {
	if rng == nil {
		rng = rand.Float64
	}
	return &DemoTradeService{
		trades: trades,
		users:  users,
		rng:    rng,
		logger: logger,
	}
}

// DemoTradeInput describes a demo trade to execute
type DemoTradeInput struct {
	Email           string
	Symbol          string
	MarketDirection string
	Amount          decimal.Decimal
	Profit          decimal.Decimal
	Duration        int
}

// DemoTradeResult reports the executed trade and its outcome
type DemoTradeResult struct {
	Trade      *domain.DemoTrade `json:"trade"`
	Result     string            `json:"result"` // "win" | "loss"
	NewBalance decimal.Decimal   `json:"new_balance"`
}

// Execute saves the demo trade and applies its outcome to the demo balance
func (s *DemoTradeService) Execute(ctx context.Context, input DemoTradeInput) (*DemoTradeResult, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	trade := &domain.DemoTrade{
		ID:              uuid.New(),
		Email:           input.Email,
		Symbol:          input.Symbol,
		MarketDirection: input.MarketDirection,
		Amount:          input.Amount,
		ProfitPercent:   defaultProfitPercent,
		Profit:          input.Profit,
		Duration:        input.Duration,
		CreatedAt:       time.Now(),
	}
	if err := s.trades.Create(ctx, trade); err != nil {
		return nil, err
	}

	win := s.rng() > 0.5
	var balance decimal.Decimal
	result := "loss"
	if win {
		balance = user.Demo.Add(input.Profit)
		result = "win"
	} else {
		balance = user.Demo.Sub(input.Amount)
	}

	if err := s.users.UpdateDemoBalance(ctx, input.Email, balance); err != nil {
		return nil, fmt.Errorf("failed to apply demo trade outcome: %w", err)
	}

	s.logger.Info("demo trade executed",
		zap.String("email", input.Email),
		zap.String("symbol", input.Symbol),
		zap.String("result", result),
		zap.String("new_balance", balance.String()))

	return &DemoTradeResult{
		Trade:      trade,
		Result:     result,
		NewBalance: balance,
	}, nil
}

// History retrieves the user's demo trades, most recent first
func (s *DemoTradeService) History(ctx context.Context, email string) ([]*domain.DemoTrade, error) {
	return s.trades.GetByEmail(ctx, email)
}

// ResetBalance tops the demo balance back up to its starting amount
func (s *DemoTradeService) ResetBalance(ctx context.Context, email string) error {
	return s.users.UpdateDemoBalance(ctx, email, demoResetBalance)
}
