// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"dukapos/internal/domain/auth"
	"dukapos/internal/domain/catalogs/customer"
	"dukapos/internal/domain/catalogs/product"
	"dukapos/internal/domain/custledger"
	"dukapos/internal/domain/documents/draft"
	"dukapos/internal/domain/documents/payment"
	"dukapos/internal/domain/documents/purchase"
	"dukapos/internal/domain/documents/sale"
	"dukapos/internal/domain/reports"
	"dukapos/internal/domain/stockledger"
	"dukapos/internal/imagestore"
	"dukapos/internal/importer"
	"dukapos/internal/infrastructure/http/v1/handlers"
	"dukapos/internal/infrastructure/http/v1/middleware"
	"dukapos/internal/infrastructure/storage/postgres"
	"dukapos/internal/infrastructure/storage/postgres/catalog_repo"
	"dukapos/internal/infrastructure/storage/postgres/document_repo"
	"dukapos/internal/infrastructure/storage/postgres/ledger_repo"
	"dukapos/internal/infrastructure/storage/postgres/report_repo"
	"dukapos/internal/invoice"
	"dukapos/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks).
	Pool *postgres.Pool

	// TxManager runs repository operations in transactions.
	TxManager *postgres.TxManager

	// Logger for request logging.
	Logger *logger.Logger

	// JWTValidator for token validation.
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints.
	AuthService *auth.Service

	// Numbering generates document numbers.
	Numbering purchase.Numbering

	// ImportPipeline runs receipt imports.
	ImportPipeline *importer.Pipeline

	// Audit records document changes; may be nil to disable the trail.
	Audit *postgres.AuditService

	// Images stores receipt images; drafts remove them on reject.
	Images imagestore.Store

	// InvoiceRenderer renders sales invoices.
	InvoiceRenderer invoice.Renderer

	// ShopName appears on invoices and share messages.
	ShopName string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	healthHandler.RegisterRoutes(router.Group("/health"))

	// Repos and services are created once; transactions are carried per
	// request through context by the TxManager.
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	customerRepo := catalog_repo.NewCustomerRepo(cfg.TxManager)
	pendingRepo := catalog_repo.NewPendingProductRepo(cfg.TxManager)
	purchaseRepo := document_repo.NewPurchaseRepo(cfg.TxManager)
	draftRepo := document_repo.NewDraftRepo(cfg.TxManager)
	saleRepo := document_repo.NewSaleRepo(cfg.TxManager)
	paymentRepo := document_repo.NewPaymentRepo(cfg.TxManager)
	stockEntryRepo := ledger_repo.NewStockLedgerRepo(cfg.TxManager)
	reportRepo := report_repo.NewReportRepo(cfg.TxManager)

	productService := product.NewService(productRepo, cfg.TxManager)
	customerService := customer.NewService(customerRepo, cfg.TxManager)
	stockService := stockledger.NewService(productRepo, stockEntryRepo, cfg.TxManager)
	ledgerService := custledger.NewService(customerRepo, saleRepo, paymentRepo)
	purchaseService := purchase.NewService(purchaseRepo, productRepo, stockService, cfg.Numbering, cfg.TxManager)
	draftService := draft.NewService(draftRepo, purchaseRepo, productRepo, pendingRepo,
		stockService, cfg.Numbering, cfg.Images, cfg.TxManager)
	saleService := sale.NewService(saleRepo, productRepo, stockService, ledgerService, cfg.Numbering, cfg.TxManager)
	paymentService := payment.NewService(paymentRepo, ledgerService, cfg.TxManager)
	reportService := reports.NewService(reportRepo)

	base := handlers.NewBaseHandler()

	// API v1
	api := router.Group("/api/v1")
	{
		registerAuthRoutes(api, base, cfg)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		catalogs := protected.Group("/catalog")
		handlers.NewProductHandler(base, productService).RegisterRoutes(catalogs.Group("/products"))
		handlers.NewCustomerHandler(base, customerService, ledgerService).RegisterRoutes(catalogs.Group("/customers"))
		handlers.NewPendingHandler(base, pendingRepo).RegisterRoutes(catalogs.Group("/pending-products"))

		docs := protected.Group("/documents")
		handlers.NewDraftHandler(base, draftService, cfg.ImportPipeline, cfg.Audit).RegisterRoutes(docs.Group("/drafts"))
		handlers.NewPurchaseHandler(base, purchaseService, cfg.Audit).RegisterRoutes(docs.Group("/purchases"))
		handlers.NewSaleHandler(base, saleService, cfg.InvoiceRenderer, cfg.ShopName).RegisterRoutes(docs.Group("/sales"))
		handlers.NewPaymentHandler(base, paymentService).RegisterRoutes(docs.Group("/payments"))

		handlers.NewStockHandler(base, stockService, cfg.Audit).RegisterRoutes(protected.Group("/stock"))
		handlers.NewReportsHandler(base, reportService).RegisterRoutes(protected.Group("/reports"))
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}
