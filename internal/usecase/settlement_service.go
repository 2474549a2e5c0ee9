package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mirrorcaps/internal/domain"
)

// moneyScale is the rounding applied to computed interest credits; matches
// the NUMERIC(20,8) ledger columns
const moneyScale = 8

// SettlementService applies the monetary effect of a status transition on one
// transaction to the associated user(s), atomically with the status write
// itself. Audit events and notifications go out only after the commit.
type SettlementService struct {
	store    domain.LedgerStore
	audit    domain.AuditSink
	notifier domain.Notifier
	logger   *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	store domain.LedgerStore,
	audit domain.AuditSink,
	notifier domain.Notifier,
	logger *zap.Logger,
) *SettlementService {
	return &SettlementService{
		store:    store,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
	}
}

// SettlementResult reports what a committed settlement changed
type SettlementResult struct {
	Transaction *domain.Transaction
	User        *domain.User // nil when no single user balance was touched

	// CreditedUsers counts depositors credited by a trade disbursement pass
	CreditedUsers int
}

// validDecision accepts the two terminal statuses an admin may choose
func validDecision(decision domain.TransactionStatus) error {
	if decision != domain.StatusSuccess && decision != domain.StatusRejected {
		return fmt.Errorf("invalid settlement decision %q", decision)
	}
	return nil
}

// SettleDeposit transitions a pending deposit to the given decision. On
// success the deposit amount is credited to the user's principal; a rejected
// deposit changes no balance. Repeat calls surface ErrAlreadySettled.
func (s *SettlementService) SettleDeposit(ctx context.Context, id uuid.UUID, decision domain.TransactionStatus, actor domain.Actor) (*SettlementResult, error) {
	if err := validDecision(decision); err != nil {
		return nil, err
	}

	res := &SettlementResult{}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		res.User = nil // a retried pass starts clean

		t, err := tx.TransactionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != domain.TypeDeposit {
			return fmt.Errorf("transaction %s is not a deposit: %w", id, domain.ErrNotFound)
		}
		if t.Terminal() {
			return domain.ErrAlreadySettled
		}

		if decision == domain.StatusSuccess {
			user, err := tx.UserForUpdate(ctx, t.User.ID)
			if err != nil {
				return err
			}
			user.Deposit = user.Deposit.Add(t.Amount)
			if err := tx.UpdateBalances(ctx, user); err != nil {
				return err
			}
			res.User = user
		}

		if err := tx.SetTransactionStatus(ctx, t.ID, decision); err != nil {
			return err
		}
		t.Status = decision
		res.Transaction = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "settle_deposit", actor, res, map[string]any{
		"amount": res.Transaction.Amount.String(),
	})
	return res, nil
}

// SettleWithdrawal transitions a pending withdrawal to the given decision.
// On success the amount is drawn down from the user's principal first, then
// from accrued interest; a withdrawal exceeding deposit + interest aborts
// with ErrInsufficientFunds and changes nothing.
func (s *SettlementService) SettleWithdrawal(ctx context.Context, id uuid.UUID, decision domain.TransactionStatus, actor domain.Actor) (*SettlementResult, error) {
	if err := validDecision(decision); err != nil {
		return nil, err
	}

	res := &SettlementResult{}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		res.User = nil

		t, err := tx.TransactionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != domain.TypeWithdrawal {
			return fmt.Errorf("transaction %s is not a withdrawal: %w", id, domain.ErrNotFound)
		}
		if t.Terminal() {
			return domain.ErrAlreadySettled
		}

		if decision == domain.StatusSuccess {
			user, err := tx.UserForUpdate(ctx, t.User.ID)
			if err != nil {
				return err
			}
			if t.Amount.GreaterThan(user.TotalAvailable()) {
				return domain.ErrInsufficientFunds
			}

			// Drawdown order: principal first, remainder from interest
			if t.Amount.LessThanOrEqual(user.Deposit) {
				user.Deposit = user.Deposit.Sub(t.Amount)
			} else {
				remaining := t.Amount.Sub(user.Deposit)
				user.Deposit = decimal.Zero
				user.Interest = user.Interest.Sub(remaining)
			}
			user.Withdraw = user.Withdraw.Add(t.Amount)

			if err := tx.UpdateBalances(ctx, user); err != nil {
				return err
			}
			res.User = user
		}

		if err := tx.SetTransactionStatus(ctx, t.ID, decision); err != nil {
			return err
		}
		t.Status = decision
		res.Transaction = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "settle_withdrawal", actor, res, map[string]any{
		"amount": res.Transaction.Amount.String(),
	})
	return res, nil
}

// SettleTrade finalizes a pending trade and runs the interest disbursement
// pass in the same atomic unit: either the trade becomes terminal and every
// eligible depositor is credited, or nothing changes at all.
func (s *SettlementService) SettleTrade(ctx context.Context, id uuid.UUID, actor domain.Actor) (*SettlementResult, error) {
	res := &SettlementResult{}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		res.CreditedUsers = 0

		t, err := tx.TransactionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Type != domain.TypeTrade {
			return fmt.Errorf("transaction %s is not a trade: %w", id, domain.ErrNotFound)
		}
		if t.Terminal() {
			return domain.ErrAlreadySettled
		}
		if t.TradeData == nil {
			return fmt.Errorf("trade %s has no trade data: %w", id, domain.ErrDataIntegrityGap)
		}

		credited, err := s.disburse(ctx, tx, t)
		if err != nil {
			return err
		}
		res.CreditedUsers = credited

		if err := tx.SetTransactionStatus(ctx, t.ID, domain.StatusSuccess); err != nil {
			return err
		}
		t.Status = domain.StatusSuccess
		res.Transaction = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "settle_trade", actor, res, map[string]any{
		"category":       res.Transaction.TradeData.Category,
		"interest_rate":  res.Transaction.TradeData.InterestRate.String(),
		"credited_users": res.CreditedUsers,
	})
	return res, nil
}

// disburse credits interestRate * deposit to every depositor whose copied
// trader specializes in the trade's category. A user with no trader, or a
// trader that no longer resolves, is skipped without failing the pass.
func (s *SettlementService) disburse(ctx context.Context, tx domain.LedgerTx, trade *domain.Transaction) (int, error) {
	users, err := tx.DepositorsForUpdate(ctx)
	if err != nil {
		return 0, err
	}

	// nil entry = trader known to be unresolvable, logged once
	traders := make(map[uuid.UUID]*domain.Trader)
	credited := 0

	for _, user := range users {
		if user.TraderID == nil {
			s.logger.Debug("user has no trader assigned, skipping disbursement",
				zap.String("user_id", user.ID.String()))
			continue
		}

		trader, seen := traders[*user.TraderID]
		if !seen {
			trader, err = tx.TraderByID(ctx, *user.TraderID)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					return 0, err
				}
				s.logger.Warn("copied trader does not resolve, skipping disbursement",
					zap.String("user_id", user.ID.String()),
					zap.String("trader_id", user.TraderID.String()),
					zap.Error(domain.ErrDataIntegrityGap))
				trader = nil
			}
			traders[*user.TraderID] = trader
		}
		if trader == nil || trader.Specialization != trade.TradeData.Category {
			continue
		}

		credit := trade.TradeData.InterestRate.Mul(user.Deposit).Round(moneyScale)
		user.Interest = user.Interest.Add(credit)
		if err := tx.UpdateBalances(ctx, user); err != nil {
			return 0, err
		}
		credited++

		s.logger.Info("interest disbursed",
			zap.String("user_id", user.ID.String()),
			zap.String("trade_id", trade.ID.String()),
			zap.String("credit", credit.String()))
	}

	return credited, nil
}

// emit hands the committed outcome to the audit sink and the notifier. Both
// run after the commit; a failed notification is logged, never propagated.
func (s *SettlementService) emit(ctx context.Context, action string, actor domain.Actor, res *SettlementResult, metadata map[string]any) {
	event := domain.AuditEvent{
		Action:           action,
		ActorEmail:       actor.Email,
		ActorRole:        actor.Role(),
		TargetCollection: "transactions",
		TargetID:         res.Transaction.ID,
		Metadata:         metadata,
		Status:           string(res.Transaction.Status),
	}
	if actor.ID != uuid.Nil {
		actorID := actor.ID
		event.ActorID = &actorID
	}
	s.audit.Record(ctx, event)

	if err := s.notifier.TransactionSettled(ctx, res.Transaction, res.User); err != nil {
		s.logger.Warn("settlement notification failed",
			zap.String("transaction_id", res.Transaction.ID.String()),
			zap.Error(err))
	}
}
