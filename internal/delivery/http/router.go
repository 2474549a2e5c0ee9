package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "mirrorcaps/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler        *AuthHandler
	UserHandler        *UserHandler
	TraderHandler      *TraderHandler
	TransactionHandler *TransactionHandler
	DepositHandler     *DepositHandler
	WithdrawalHandler  *WithdrawalHandler
	TradeHandler       *TradeHandler
	DemoTradeHandler   *DemoTradeHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":  "healthy",
			"service": "mirrorcaps-api",
		})
	})

	// API group
	api := e.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/register", config.AuthHandler.Register)
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/logout", config.AuthHandler.Logout)
	}

	// User routes (protected with AuthMiddleware)
	user := api.Group("/user", custommiddleware.AuthMiddleware)
	{
		user.GET("/me", config.UserHandler.GetMe)
		user.POST("/trader", config.UserHandler.CopyTrader)
		user.GET("/demo-trades", config.DemoTradeHandler.List)
		user.POST("/demo-trades", config.DemoTradeHandler.Create)
		user.POST("/demo-balance/reset", config.DemoTradeHandler.ResetBalance)
	}

	// Admin user listing
	api.GET("/users", config.UserHandler.List, custommiddleware.AuthMiddleware, custommiddleware.AdminMiddleware)

	// Trader routes (listing is public, creation is admin-only)
	traders := api.Group("/traders")
	{
		traders.GET("", config.TraderHandler.List)
		traders.GET("/:id", config.TraderHandler.Get)
		traders.POST("", config.TraderHandler.Create, custommiddleware.AuthMiddleware, custommiddleware.AdminMiddleware)
	}

	// Transaction routes (protected; owner or admin)
	transactions := api.Group("/transactions", custommiddleware.AuthMiddleware)
	{
		transactions.GET("", config.TransactionHandler.List, custommiddleware.AdminMiddleware)
		transactions.GET("/:id", config.TransactionHandler.Get)
		transactions.GET("/user/:email", config.TransactionHandler.ListByUser)
	}

	// Deposit routes
	deposits := api.Group("/deposits", custommiddleware.AuthMiddleware)
	{
		deposits.GET("", config.DepositHandler.List, custommiddleware.AdminMiddleware)
		deposits.GET("/user/:email", config.DepositHandler.ListByUser)
		deposits.POST("", config.DepositHandler.Create)
		deposits.PUT("/:id", config.DepositHandler.Settle, custommiddleware.AdminMiddleware)
	}

	// Withdrawal routes
	withdrawals := api.Group("/withdrawals", custommiddleware.AuthMiddleware)
	{
		withdrawals.GET("", config.WithdrawalHandler.List, custommiddleware.AdminMiddleware)
		withdrawals.GET("/user/:email", config.WithdrawalHandler.ListByUser)
		withdrawals.GET("/:id", config.WithdrawalHandler.Get)
		withdrawals.POST("", config.WithdrawalHandler.Create)
		withdrawals.PUT("/:id", config.WithdrawalHandler.Settle, custommiddleware.AdminMiddleware)
	}

	// Trade routes (settlement runs interest disbursement)
	trades := api.Group("/trades", custommiddleware.AuthMiddleware)
	{
		trades.GET("", config.TradeHandler.List)
		trades.GET("/user/:userId/trader/:traderId", config.TradeHandler.ListForCopier)
		trades.POST("", config.TradeHandler.Create, custommiddleware.AdminMiddleware)
		trades.PUT("/:id", config.TradeHandler.Settle, custommiddleware.AdminMiddleware)
	}
}
