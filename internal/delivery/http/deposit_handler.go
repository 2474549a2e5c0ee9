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

// DepositHandler handles deposit submission and settlement requests
type DepositHandler struct {
	txRepo     domain.TransactionRepository
	userRepo   domain.UserRepository
	settlement *usecase.SettlementService
	notifier   domain.Notifier
	audit      domain.AuditSink
	logger     *zap.Logger
}

// NewDepositHandler creates a new DepositHandler
func NewDepositHandler(
	txRepo domain.TransactionRepository,
	userRepo domain.UserRepository,
	settlement *usecase.SettlementService,
	notifier domain.Notifier,
	audit domain.AuditSink,
	logger *zap.Logger,
) *DepositHandler {
	return &DepositHandler{
		txRepo:     txRepo,
		userRepo:   userRepo,
		settlement: settlement,
		notifier:   notifier,
		audit:      audit,
		logger:     logger,
	}
}

// List returns all deposits
// GET /api/deposits (admin)
func (h *DepositHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	deposits, err := h.txRepo.GetByType(ctx, domain.TypeDeposit)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"deposits": deposits,
		"count":    len(deposits),
	})
}

// Create submits a new deposit in pending state
// POST /api/deposits
func (h *DepositHandler) Create(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	var req dto.CreateDepositRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return ValidationFailedResponse(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	pending, err := h.txRepo.HasPending(ctx, user.ID, domain.TypeDeposit)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	if pending {
		return DomainErrorResponse(c, domain.ErrPendingExists)
	}

	transaction := &domain.Transaction{
		ID:     uuid.New(),
		Type:   domain.TypeDeposit,
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
			ConvertedAmount: req.ConvertedAmount,
		},
	}

	if err := h.txRepo.Create(ctx, transaction); err != nil {
		return InternalServerErrorResponse(c, "Failed to create deposit", err)
	}

	if err := h.notifier.TransactionPending(ctx, transaction); err != nil {
		h.logger.Warn("pending deposit notification failed",
			zap.String("transaction_id", transaction.ID.String()),
			zap.Error(err))
	}

	actorID := actor.ID
	h.audit.Record(ctx, domain.AuditEvent{
		Action:           "create_deposit",
		ActorID:          &actorID,
		ActorEmail:       actor.Email,
		ActorRole:        actor.Role(),
		TargetCollection: "transactions",
		TargetID:         transaction.ID,
		Metadata: map[string]any{
			"amount": req.Amount.String(),
			"coin":   req.Coin,
		},
		Status: string(domain.StatusPending),
	})

	return SuccessMessageResponse(c, "Deposit successful and pending approval...", transaction)
}

// ListByUser returns all deposits for the email
// GET /api/deposits/user/:email
func (h *DepositHandler) ListByUser(c echo.Context) error {
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

	deposits := make([]*domain.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Type == domain.TypeDeposit {
			deposits = append(deposits, t)
		}
	}

	return SuccessResponse(c, map[string]interface{}{
		"deposits": deposits,
		"count":    len(deposits),
	})
}

// Settle applies the admin decision to a pending deposit
// PUT /api/deposits/:id (admin)
func (h *DepositHandler) Settle(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid deposit ID")
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

	result, err := h.settlement.SettleDeposit(ctx, id, domain.TransactionStatus(req.Decision), actor)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessMessageResponse(c, "Deposit successfully updated", map[string]interface{}{
		"transaction": result.Transaction,
	})
}
