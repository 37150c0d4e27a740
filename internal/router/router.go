package router

import (
	"net/http"
	"time"

	"velvet/config"
	"velvet/internal/domain"
	"velvet/internal/handler"
	"velvet/internal/middleware"
	"velvet/internal/repository"
	"velvet/internal/service"
	"velvet/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers. Every component receives
// its store handle explicitly; nothing reaches for a package-level DB.
func Setup(cfg *config.Config, db *gorm.DB, audit *service.AuditService) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(cfg.Ledger.RateLimitPerMin, time.Minute)))

	// Repositories
	ledgerRepo := repository.NewLedgerRepository(db)
	idemRepo := repository.NewIdempotencyRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	giftRepo := repository.NewGiftRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Services
	guard := service.NewIdempotencyGuard(db, idemRepo, cfg.Ledger.IdempotencyTTL)
	guard.StartSweeper(cfg.Ledger.SweepInterval)
	mutations := service.NewMutationService(ledgerRepo, guard, audit)
	settlement := service.NewSettlementService(ledgerRepo, purchaseRepo, giftRepo, catalogRepo, settingRepo, guard, audit, cfg.Commerce.CreatorSharePercent)

	callHub := ws.NewCallHub()

	// Handlers
	walletHandler := handler.NewWalletHandler(ledgerRepo, mutations)
	giftHandler := handler.NewGiftHandler(settlement)
	purchaseHandler := handler.NewPurchaseHandler(settlement)
	catalogHandler := handler.NewCatalogHandler(catalogRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		wallet := api.Group("/wallet")
		wallet.Use(authMw)
		{
			wallet.GET("/balance", walletHandler.GetBalance)
			wallet.GET("/ledger", walletHandler.GetLedger)
			wallet.POST("/transfer", walletHandler.Transfer)
			wallet.POST("/credit", adminMw, walletHandler.Credit)
			wallet.POST("/debit", adminMw, walletHandler.Debit)
			wallet.POST("/settle-call", adminMw, walletHandler.SettleCall)
		}

		gifts := api.Group("/gifts")
		gifts.Use(authMw)
		{
			gifts.POST("/send", giftHandler.Send)
			gifts.POST("/purchase", purchaseHandler.Settle)
		}

		catalog := api.Group("/catalog")
		catalog.Use(authMw)
		{
			catalog.GET("/packages", catalogHandler.ListPackages)
			catalog.GET("/gifts", catalogHandler.ListGifts)
		}

		// Billed call session; auth via token query param, same as the
		// other websocket upgrades.
		api.GET("/ws/call", handler.UpgradeCallWS(&cfg.JWT, callHub, settingRepo, mutations, cfg.Commerce.CallPricePerMinute))
	}

	return r
}
