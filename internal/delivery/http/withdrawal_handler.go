package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mirrorcaps/internal/delivery/http/dto"
	"mirrorcaps/internal/domain"
	"mirrorcaps/internal/middleware"
	"mirrorcaps/internal/usecase"
)

// WithdrawalHandler handles withdrawal submission and settlement requests
type WithdrawalHandler struct {
	txRepo     domain.TransactionRepository
	userRepo   domain.UserRepository
	settlement *usecase.SettlementService
	notifier   domain.Notifier
	audit      domain.AuditSink
	logger     *zap.Logger
}

// NewWithdrawalHandler creates a new WithdrawalHandler
func NewWithdrawalHandler(
	txRepo domain.TransactionRepository,
	userRepo domain.UserRepository,
	settlement *usecase.SettlementService,
	notifier domain.Notifier,
	audit domain.AuditSink,
	logger *zap.Logger,
) *WithdrawalHandler {
	return &WithdrawalHandler{
		txRepo:     txRepo,
		userRepo:   userRepo,
		settlement: settlement,
		notifier:   notifier,
		audit:      audit,
		logger:     logger,
	}
}

// List returns all withdrawals
// GET /api/withdrawals (admin)
func (h *WithdrawalHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	withdrawals, err := h.txRepo.GetByType(ctx, domain.TypeWithdrawal)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"withdrawals": withdrawals,
		"count":       len(withdrawals),
	})
}

// Create submits a new withdrawal in pending state. Admins may submit on
// behalf of another user via user_id.
// POST /api/withdrawals
func (h *WithdrawalHandler) Create(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	var req dto.CreateWithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return ValidationFailedResponse(c, err)
	}

	targetID := actor.ID
	if req.UserID != nil {
		targetID = *req.UserID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	if !actor.CanActFor(user.ID, user.Email) {
		return ForbiddenResponse(c, "Access denied")
	}

	pending, err := h.txRepo.HasPending(ctx, user.ID, domain.TypeWithdrawal)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	if pending {
		return DomainErrorResponse(c, domain.ErrPendingExists)
	}

	transaction := &domain.Transaction{
		ID:     uuid.New(),
		Type:   domain.TypeWithdrawal,
		Status: domain.StatusPending,
		Amount: req.Amount,
		Date:   time.Now(),
		User: domain.UserSnapshot{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.FullName,
		},
		WalletData: &domain.WalletData{
			Coin:            req.Coin,
			Network:         req.Network,
			Address:         req.Address,
			ConvertedAmount: req.ConvertedAmount,
		},
	}

	if err := h.txRepo.Create(ctx, transaction); err != nil {
		return InternalServerErrorResponse(c, "Failed to create withdrawal", err)
	}

	if err := h.notifier.TransactionPending(ctx, transaction); err != nil {
		h.logger.Warn("pending withdrawal notification failed",
			zap.String("transaction_id", transaction.ID.String()),
			zap.Error(err))
	}

	actorID := actor.ID
	h.audit.Record(ctx, domain.AuditEvent{
		Action:           "create_withdrawal",
		ActorID:          &actorID,
		ActorEmail:       actor.Email,
		ActorRole:        actor.Role(),
		TargetCollection: "transactions",
		TargetID:         transaction.ID,
		Metadata: map[string]any{
			"amount":  req.Amount.String(),
			"coin":    req.Coin,
			"network": req.Network,
		},
		Status: string(domain.StatusPending),
	})

	return SuccessMessageResponse(c, "Withdrawal successful and pending approval...", transaction)
}

// ListByUser returns all withdrawals for the email
// GET /api/withdrawals/user/:email
func (h *WithdrawalHandler) ListByUser(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	email := c.Param("email")
	if !actor.CanActFor(uuid.Nil, email) {
		return ForbiddenResponse(c, "Access denied")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	transactions, err := h.txRepo.GetByUserEmail(ctx, email)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	withdrawals := make([]*domain.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Type == domain.TypeWithdrawal {
			withdrawals = append(withdrawals, t)
		}
	}

	return SuccessResponse(c, map[string]interface{}{
		"withdrawals": withdrawals,
		"count":       len(withdrawals),
	})
}

// Get returns a single withdrawal
// GET /api/withdrawals/:id
func (h *WithdrawalHandler) Get(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid withdrawal ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.txRepo.GetByID(ctx, id)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	if t.Type != domain.TypeWithdrawal {
		return NotFoundResponse(c, "Withdrawal not found")
	}
	if !actor.CanActFor(t.User.ID, t.User.Email) {
		return ForbiddenResponse(c, "Access denied")
	}

	return SuccessResponse(c, t)
}

// Settle applies the admin decision to a pending withdrawal
// PUT /api/withdrawals/:id (admin)
func (h *WithdrawalHandler) Settle(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid withdrawal ID")
	}

	var req dto.SettleRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return ValidationFailedResponse(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := h.settlement.SettleWithdrawal(ctx, id, domain.TransactionStatus(req.Decision), actor)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessMessageResponse(c, "Withdrawal successfully updated", map[string]interface{}{
		"transaction": result.Transaction,
	})
}
