package handler

import (
	"mercafacil/internal/adapter/http/middleware"
	"mercafacil/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	SettlementSvc  ports.SettlementService
	TransactionSvc ports.TransactionService
	ExtractSvc     ports.ExtractService
	LedgerSvc      ports.LedgerService
	TokenSvc       ports.TokenService
	ServiceKey     string
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/api/v1")

	// --- Service-to-service routes (order + payment collaborators) ---
	svcAuth := middleware.ServiceKeyAuth(deps.ServiceKey)

	transactionHandler := NewTransactionHandler(deps.TransactionSvc)
	transactions := v1.Group("/transactions", svcAuth)
	{
		transactions.POST("", transactionHandler.RecordTransaction)
		transactions.GET("/:orderID", transactionHandler.GetTransaction)
	}

	settlementHandler := NewSettlementHandler(deps.SettlementSvc)
	settlements := v1.Group("/settlements", svcAuth)
	{
		settlements.POST("", settlementHandler.SettleOrder)
		settlements.GET("/:orderID", settlementHandler.GetPayout)
	}

	// --- JWT-authenticated routes (dashboard banking screens) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.ExtractSvc, deps.LedgerSvc)

	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance", walletHandler.GetBalance)
		wallets.GET("/extract", walletHandler.GetExtract)
		wallets.POST("/deposit", walletHandler.Deposit)
		wallets.POST("/withdraw", walletHandler.Withdraw)
	}

	return r
}
