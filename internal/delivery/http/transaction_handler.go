package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"mirrorcaps/internal/domain"
	"mirrorcaps/internal/middleware"
)

// TransactionHandler serves the read-only transaction endpoints
type TransactionHandler struct {
	txRepo domain.TransactionRepository
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(txRepo domain.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{
		txRepo: txRepo,
	}
}

// List returns all transactions, most recent first
// GET /api/transactions (admin)
func (h *TransactionHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	transactions, err := h.txRepo.GetAll(ctx)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// Get returns a single transaction
// GET /api/transactions/:id
func (h *TransactionHandler) Get(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid transaction ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.txRepo.GetByID(ctx, id)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	if !actor.CanActFor(t.User.ID, t.User.Email) {
		return ForbiddenResponse(c, "Access denied")
	}

	return SuccessResponse(c, t)
}

// ListByUser returns all transactions snapshotted for the email
// GET /api/transactions/user/:email
func (h *TransactionHandler) ListByUser(c echo.Context) error {
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

	return SuccessResponse(c, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}
