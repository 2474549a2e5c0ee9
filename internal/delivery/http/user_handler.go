package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"mirrorcaps/internal/delivery/http/dto"
	"mirrorcaps/internal/domain"
	"mirrorcaps/internal/middleware"
)

// UserHandler handles user-related requests
type UserHandler struct {
	userRepo   domain.UserRepository
	traderRepo domain.TraderRepository
	audit      domain.AuditSink
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	userRepo domain.UserRepository,
	traderRepo domain.TraderRepository,
	audit domain.AuditSink,
) *UserHandler {
	return &UserHandler{
		userRepo:   userRepo,
		traderRepo: traderRepo,
		audit:      audit,
	}
}

// GetMe returns current user details
// GET /api/user/me
func (h *UserHandler) GetMe(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, dto.NewUserOutput(user))
}

// List returns all registered users
// GET /api/users (admin)
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.userRepo.GetAll(ctx)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	out := make([]*dto.UserOutput, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserOutput(u))
	}

	return SuccessResponse(c, map[string]interface{}{
		"users": out,
		"count": len(out),
	})
}

// CopyTrader assigns or drops the user's copied trader and keeps the trader's
// copier counter in step
// POST /api/user/trader
func (h *UserHandler) CopyTrader(c echo.Context) error {
	actor, err := middleware.GetActor(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	var req dto.CopyTraderRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	if req.TraderID != nil {
		trader, err := h.traderRepo.GetByID(ctx, *req.TraderID)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		if trader.Status != domain.TraderStatusActive {
			return BadRequestResponse(c, "Trader is not accepting copiers")
		}
	}

	if err := h.userRepo.AssignTrader(ctx, user.ID, req.TraderID); err != nil {
		return DomainErrorResponse(c, err)
	}

	// Counter bookkeeping happens on copy/drop, never during settlement
	if user.TraderID != nil {
		if err := h.traderRepo.AdjustCopiers(ctx, *user.TraderID, -1); err != nil {
			return DomainErrorResponse(c, err)
		}
	}
	if req.TraderID != nil {
		if err := h.traderRepo.AdjustCopiers(ctx, *req.TraderID, 1); err != nil {
			return DomainErrorResponse(c, err)
		}
	}

	action := "copy_trader"
	metadata := map[string]any{}
	if req.TraderID != nil {
		metadata["trader_id"] = req.TraderID.String()
	} else {
		action = "drop_trader"
	}
	actorID := actor.ID
	h.audit.Record(ctx, domain.AuditEvent{
		Action:           action,
		ActorID:          &actorID,
		ActorEmail:       actor.Email,
		ActorRole:        actor.Role(),
		TargetCollection: "users",
		TargetID:         user.ID,
		Metadata:         metadata,
		Status:           "success",
	})

	return SuccessMessageResponse(c, "Trader assignment updated", nil)
}
