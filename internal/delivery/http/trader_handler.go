package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"mirrorcaps/internal/delivery/http/dto"
	"mirrorcaps/internal/domain"
)

// TraderHandler handles trader profile requests
type TraderHandler struct {
	traderRepo domain.TraderRepository
}

// NewTraderHandler creates a new TraderHandler
func NewTraderHandler(traderRepo domain.TraderRepository) *TraderHandler {
	return &TraderHandler{
		traderRepo: traderRepo,
	}
}

// List returns all trader profiles
// GET /api/traders
func (h *TraderHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	traders, err := h.traderRepo.GetAll(ctx)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"traders": traders,
		"count":   len(traders),
	})
}

// Get returns a single trader profile
// GET /api/traders/:id
func (h *TraderHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid trader ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trader, err := h.traderRepo.GetByID(ctx, id)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, trader)
}

// Create adds a new trader profile
// POST /api/traders (admin)
func (h *TraderHandler) Create(c echo.Context) error {
	var req dto.CreateTraderRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return ValidationFailedResponse(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trader := &domain.Trader{
		ID:                uuid.New(),
		Name:              req.Name,
		Username:          req.Username,
		Bio:               req.Bio,
		Specialization:    req.Specialization,
		Experience:        req.Experience,
		RiskLevel:         req.RiskLevel,
		WinRate:           req.WinRate,
		MinimumCopyAmount: req.MinimumCopyAmount,
		Status:            domain.TraderStatusActive,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	if err := h.traderRepo.Create(ctx, trader); err != nil {
		return InternalServerErrorResponse(c, "Failed to create trader", err)
	}

	return CreatedResponse(c, trader)
}
