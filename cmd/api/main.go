package main

import (
	"delipos/internal/config"
	"delipos/internal/database"
	"delipos/internal/handler"
	"delipos/internal/middleware"
	"delipos/internal/repository"
	"delipos/internal/service"
	"delipos/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	db, err := database.Open(cfg.DBPath(), logger)
	if err != nil {
		logger.Fatal("database open failed", zap.Error(err))
	}
	if err := database.EnableWAL(db); err != nil {
		logger.Warn("could not enable WAL mode", zap.Error(err))
	}
	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	if err := database.SeedAdmin(db, cfg.AdminUser, cfg.AdminPassword, logger); err != nil {
		logger.Fatal("admin seed failed", zap.Error(err))
	}

	hub := ws.NewHub()
	go hub.Run()

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	productRepo := repository.NewProductRepository(db)
	clientRepo := repository.NewClientRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	lossRepo := repository.NewLossRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	movementRepo := repository.NewMovementRepository(db)

	catalogService := service.NewCatalogService(productRepo, txManager)
	clientService := service.NewClientService(clientRepo, txManager)
	expenseService := service.NewExpenseService(expenseRepo, txManager)
	ledgerService := service.NewLedgerService(
		productRepo, clientRepo, saleRepo, purchaseRepo, lossRepo,
		txRepo, movementRepo, txManager, hub, cfg.EnforceCreditLimit,
	)
	reportService := service.NewReportService(db, saleRepo, purchaseRepo, txRepo, lossRepo, movementRepo)

	catalogHandler := handler.NewCatalogHandler(catalogService)
	clientHandler := handler.NewClientHandler(clientService, ledgerService, reportService)
	saleHandler := handler.NewSaleHandler(ledgerService, reportService)
	purchaseHandler := handler.NewPurchaseHandler(ledgerService, reportService)
	lossHandler := handler.NewLossHandler(ledgerService, reportService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	reportHandler := handler.NewReportHandler(reportService)
	settingsHandler := handler.NewSettingsHandler(cfg)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-User-ID", "X-Request-ID"},
		AllowCredentials: true,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/ws", func(c *gin.Context) {
		ws.ServeWs(hub, c)
	})

	api := router.Group("")
	catalogHandler.RegisterRoutes(api)
	clientHandler.RegisterRoutes(api)
	saleHandler.RegisterRoutes(api)
	purchaseHandler.RegisterRoutes(api)
	lossHandler.RegisterRoutes(api)
	expenseHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	settingsHandler.RegisterRoutes(api)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
