package router

import (
	"time"

	"stockbook/internal/config"
	"stockbook/internal/handler"
	"stockbook/internal/infra"
	"stockbook/internal/middleware"
	"stockbook/internal/model"
	"stockbook/internal/repository"
	"stockbook/internal/service"
	"stockbook/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	clientRepo := repository.NewClientRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// Shared read-through product cache. Every service that commits a
	// quantity change invalidates through it.
	productCache := service.NewProductCache(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, productCache)
	stockSvc := service.NewStockService(productRepo, movementRepo, expenseRepo, dispatcher, productCache)
	saleSvc := service.NewSaleService(saleRepo, clientRepo, stockSvc, dispatcher, productCache)
	refundSvc := service.NewRefundService(refundRepo, saleRepo, clientRepo, stockSvc, productCache)
	clientSvc := service.NewClientService(clientRepo)
	expenseSvc := service.NewExpenseService(expenseRepo)
	analyticsSvc := service.NewAnalyticsService(saleRepo, refundRepo, expenseRepo, productRepo, movementRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	stockH := handler.NewStockHandler(stockSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	refundsH := handler.NewRefundsHandler(refundSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	expensesH := handler.NewExpensesHandler(expenseSvc)
	analyticsH := handler.NewAnalyticsHandler(analyticsSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleWorker, model.RoleManager, model.RoleAdmin)
	managerUp := middleware.RequireRole(model.RoleManager, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// Products — everyone reads (prices are scoped by role in the service);
		// catalog writes are admin territory.
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/low-stock", managerUp, productsH.LowStock)
		v1.GET("/products/:id", anyRole, productsH.GetByID)
		v1.GET("/products/:id/sales", managerUp, salesH.ProductHistory)
		products := v1.Group("/products", adminOnly)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
			products.PATCH("/:id/deactivate", productsH.Deactivate)
			products.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		// Stock ledger — receipts and adjustments are manager work
		stock := v1.Group("/stock", managerUp)
		{
			stock.POST("/movements", stockH.ProcessMovement)
			stock.GET("/movements", stockH.ListMovements)
		}

		// Sales — the whole floor sells; refunds need a manager
		v1.POST("/sales", anyRole, salesH.Create)
		v1.GET("/sales", anyRole, salesH.List)
		v1.GET("/sales/:id", anyRole, salesH.GetByID)
		v1.POST("/sales/:id/refunds", managerUp, refundsH.Create)
		v1.GET("/refunds", managerUp, refundsH.List)

		// Clients and the debt ledger
		v1.GET("/clients", anyRole, clientsH.List)
		v1.GET("/clients/:id", anyRole, clientsH.GetByID)
		v1.POST("/clients", anyRole, clientsH.Create)
		v1.PUT("/clients/:id", managerUp, clientsH.Update)
		v1.PATCH("/clients/:id/deactivate", managerUp, clientsH.Deactivate)
		v1.PATCH("/clients/:id/reactivate", managerUp, clientsH.Reactivate)
		v1.DELETE("/clients/:id", adminOnly, clientsH.Delete)
		v1.POST("/payments", managerUp, clientsH.RecordPayment)
		v1.GET("/clients/:id/payments", managerUp, clientsH.ListPayments)

		// Expense ledger
		expenses := v1.Group("/expenses", managerUp)
		{
			expenses.POST("", expensesH.Create)
			expenses.GET("", expensesH.List)
			expenses.PUT("/:id", expensesH.Update)
			expenses.DELETE("/:id", adminOnly, expensesH.Delete)
		}

		// Analytics
		analytics := v1.Group("/analytics", managerUp)
		{
			analytics.GET("/summary", analyticsH.Summary)
			analytics.GET("/stock-report", analyticsH.StockReport)
			analytics.GET("/sales-summary", analyticsH.SalesSummary)
		}

		// User administration
		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	return r
}
