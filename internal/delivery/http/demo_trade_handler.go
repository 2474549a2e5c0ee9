package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"mirrorcaps/internal/delivery/http/dto"
	"mirrorcaps/internal/middleware"
	"mirrorcaps/internal/service"
)

// DemoTradeHandler handles the demo trading simulator endpoints
type DemoTradeHandler struct {
	demoService *service.DemoTradeService
}

// NewDemoTradeHandler creates a new DemoTradeHandler
func NewDemoTradeHandler(demoService *service.DemoTradeService) *DemoTradeHandler {
	return &DemoTradeHandler{
		demoService: demoService,
	}
}

// Create executes a demo trade against the actor's demo balance
// POST /api/user/demo-trades
func (h *DemoTradeHandler) Create(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	var req dto.CreateDemoTradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return ValidationFailedResponse(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.demoService.Execute(ctx, service.DemoTradeInput{
		Email:           actor.Email,
		Symbol:          req.Symbol,
		MarketDirection: req.MarketDirection,
		Amount:          req.Amount,
		Profit:          req.Profit,
		Duration:        req.Duration,
	})
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return CreatedResponse(c, result)
}

// List returns the actor's demo trades, most recent first
// GET /api/user/demo-trades
func (h *DemoTradeHandler) List(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	trades, err := h.demoService.History(ctx, actor.Email)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

// ResetBalance tops the actor's demo balance back up
// POST /api/user/demo-balance/reset
func (h *DemoTradeHandler) ResetBalance(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.demoService.ResetBalance(ctx, actor.Email); err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessMessageResponse(c, "Demo balance topped up", nil)
}
