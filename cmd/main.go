package main

import (
	"context"
	"log"
	"time"

	"book-inventory-backend/config"
	"book-inventory-backend/internal/bootstrap"
	"book-inventory-backend/middleware"
	"book-inventory-backend/token"
	"book-inventory-backend/utils"
	"book-inventory-backend/websocket"

	// Repositories
	"book-inventory-backend/inventory/repositories"

	// Services
	import_services "book-inventory-backend/imports/services"
	inventory_services "book-inventory-backend/inventory/services"

	// Controllers
	import_controllers "book-inventory-backend/imports/controllers"
	inventory_controllers "book-inventory-backend/inventory/controllers"

	// Routes
	import_routes "book-inventory-backend/imports/routes"
	inventory_routes "book-inventory-backend/inventory/routes"

	// bleve
	bleveControllers "book-inventory-backend/bleve/controllers"
	bleveRepositories "book-inventory-backend/bleve/repositories"
	bleveRoutes "book-inventory-backend/bleve/routes"
	bleveServices "book-inventory-backend/bleve/services"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize Zap logger
	logger := config.InitLogger(cfg.LogLevel, cfg.LogDir)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inventoryRepo, closeStore := openInventoryStore(ctx, cfg, logger)
	defer closeStore()

	if err := inventoryRepo.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to prepare inventory schema", zap.Error(err))
	}

	// Redis is optional; without it list pages are not cached
	var redisClient *redis.Client
	if cfg.RedisAddress != "" {
		redisClient, err = config.InitRedisServer(ctx, cfg.RedisAddress)
		if err != nil {
			logger.Warn("Redis unavailable, response cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}
	cache := utils.NewResponseCache(redisClient, time.Duration(cfg.CacheTTLSeconds)*time.Second, logger)

	tokenMaker, err := token.NewPasetoMaker(cfg.TokenSymmetricKey)
	if err != nil {
		logger.Fatal("Cannot create token maker", zap.Error(err))
	}

	reportStorage, err := config.ConfigureReportStorage(ctx, cfg)
	if err != nil {
		logger.Fatal("Cannot configure report storage", zap.Error(err))
	}

	// Search index
	bleveIndexingService := bleveServices.NewIndexingService(logger, cfg.BleveIndexPath)
	defer bleveIndexingService.Close()
	bleveRepo := bleveRepositories.NewBleveRepository(bleveIndexingService, logger)

	// Re-Index all data
	if err := bootstrap.IndexBleveData(ctx, inventoryRepo, bleveRepo, logger); err != nil {
		logger.Error("Failed to rebuild search index", zap.Error(err))
	}

	appCtx := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
		Logger:      logger,
	}

	app := fiber.New(fiber.Config{
		BodyLimit: (cfg.ImportMaxFileMB + 1) * 1024 * 1024,
	})

	// Apply CORS middleware from middleware package
	middleware.InitCors(app, cfg.CorsAllowOrigins)
	app.Use(middleware.RequestLogger(logger))

	// Serve generated reports and expire old ones
	if cfg.ReportStore == config.LocalReportStore {
		app.Static("/files", cfg.ReportDir)

		janitor, err := utils.ScheduleReportCleanup(cfg.ReportCleanupCron, cfg.ReportDir,
			time.Duration(cfg.ReportTTLHours)*time.Hour, logger)
		if err != nil {
			logger.Fatal("Cannot schedule report cleanup", zap.Error(err))
		}
		defer janitor.Stop()
	}

	// Live inventory events
	wsHub := websocket.NewHub(logger)
	go wsHub.Run(ctx)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Services
	inventoryService := inventory_services.NewInventoryService(inventoryRepo, bleveRepo, cache, logger)
	importService := import_services.NewImportService(inventoryRepo, bleveRepo, logger)

	// Routes
	inventoryGroup := app.Group("/inventory", middleware.ProtectedRoute(appCtx))
	import_routes.ImportRouterInit(inventoryGroup, &import_controllers.ImportController{
		Service:      importService,
		Reports:      reportStorage,
		Cache:        cache,
		Events:       wsHub,
		MaxFileBytes: int64(cfg.ImportMaxFileMB) * 1024 * 1024,
		Logger:       logger,
	}, middleware.NewTenantRateLimiter(cfg.ImportRatePerMinute, logger))
	inventory_routes.InventoryRouterInit(inventoryGroup, &inventory_controllers.InventoryController{
		Service: inventoryService,
		Events:  wsHub,
		Logger:  logger,
	})

	wsHandler := websocket.NewWsHandler(wsHub, logger)
	app.Get("/ws", middleware.ProtectedRoute(appCtx), wsHandler.HandleWebSocket)

	// Bleve Routes
	bleveRoutes.InitBleveRoutes(app, appCtx, &bleveControllers.SearchController{
		BleveRepo: bleveRepo,
		Logger:    logger,
	})

	// Start the application
	logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
	logger.Fatal("Server failed", zap.String("port", cfg.Port), zap.Error(app.Listen(":"+cfg.Port)))
}

// openInventoryStore connects the configured backend and returns its repository
// and a cleanup function.
func openInventoryStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.InventoryRepository, func()) {
	switch cfg.StoreDriver {
	case config.MongoDriver:
		client, db, err := config.ConfigureMongo(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		return repositories.NewMongoInventoryRepository(db), func() {
			if err := config.DisconnectMongo(client); err != nil {
				logger.Error("MongoDB disconnect failed", zap.Error(err))
			}
		}
	case config.MemoryDriver:
		logger.Warn("Using in-memory inventory store; data is lost on restart")
		return repositories.NewMemoryInventoryRepository(), func() {}
	default:
		db, err := config.ConfigureDatabase(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to configure database", zap.Error(err))
		}
		return repositories.NewGormInventoryRepository(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
	}
}
