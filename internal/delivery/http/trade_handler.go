package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"mirrorcaps/internal/delivery/http/dto"
	"mirrorcaps/internal/domain"
	"mirrorcaps/internal/middleware"
	"mirrorcaps/internal/usecase"
)

// TradeHandler handles trade package creation and settlement requests
type TradeHandler struct {
	txRepo     domain.TransactionRepository
	userRepo   domain.UserRepository
	traderRepo domain.TraderRepository
	settlement *usecase.SettlementService
	audit      domain.AuditSink
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(
	txRepo domain.TransactionRepository,
	userRepo domain.UserRepository,
	traderRepo domain.TraderRepository,
	settlement *usecase.SettlementService,
	audit domain.AuditSink,
) *TradeHandler {
	return &TradeHandler{
		txRepo:     txRepo,
		userRepo:   userRepo,
		traderRepo: traderRepo,
		settlement: settlement,
		audit:      audit,
	}
}

// List returns all trades, oldest first
// GET /api/trades
func (h *TradeHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trades, err := h.txRepo.GetByType(ctx, domain.TypeTrade)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

// ListForCopier returns the trades in the copied trader's specialization that
// happened since the user joined
// GET /api/trades/user/:userId/trader/:traderId
func (h *TradeHandler) ListForCopier(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return BadRequestResponse(c, "Invalid user ID")
	}
	traderID, err := uuid.Parse(c.Param("traderId"))
	if err != nil {
		return BadRequestResponse(c, "Invalid trader ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	trader, err := h.traderRepo.GetByID(ctx, traderID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	trades, err := h.txRepo.ListTradesByCategory(ctx, trader.Specialization, user.CreatedAt)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

// Create opens a new pending trade package
// POST /api/trades (admin)
func (h *TradeHandler) Create(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	var req dto.CreateTradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return ValidationFailedResponse(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	transaction := &domain.Transaction{
		ID:     uuid.New(),
		Type:   domain.TypeTrade,
		Status: domain.StatusPending,
		Amount: decimal.Zero,
		Date:   time.Now(),
		TradeData: &domain.TradeData{
			Package:      req.Package,
			InterestRate: req.InterestRate,
			Category:     req.Category,
		},
	}

	if err := h.txRepo.Create(ctx, transaction); err != nil {
		return InternalServerErrorResponse(c, "Failed to create trade", err)
	}

	actorID := actor.ID
	h.audit.Record(ctx, domain.AuditEvent{
		Action:           "create_trade",
		ActorID:          &actorID,
		ActorEmail:       actor.Email,
		ActorRole:        actor.Role(),
		TargetCollection: "transactions",
		TargetID:         transaction.ID,
		Metadata: map[string]any{
			"package":       req.Package,
			"category":      req.Category,
			"interest_rate": req.InterestRate.String(),
		},
		Status: string(domain.StatusPending),
	})

	return CreatedResponse(c, transaction)
}

// Settle finalizes a pending trade and runs interest disbursement
// PUT /api/trades/:id (admin)
func (h *TradeHandler) Settle(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid trade ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	result, err := h.settlement.SettleTrade(ctx, id, actor)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessMessageResponse(c, "Trade successfully updated", map[string]interface{}{
		"transaction":    result.Transaction,
		"credited_users": result.CreditedUsers,
	})
}
