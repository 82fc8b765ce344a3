package main

import (
	"net/http"

	"railtrace/internal/handler"
	mid "railtrace/internal/middleware"
	"railtrace/internal/model"
	"railtrace/internal/service"
	"railtrace/pkg/cache"
	"railtrace/pkg/config"
	"railtrace/pkg/database"
	"railtrace/pkg/jwtutil"
	"railtrace/pkg/logger"
	"railtrace/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env if present)
	appConfig, err := config.Load("railtrace")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting railtrace", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.User{},
		&model.Manufacturer{},
		&model.ComponentType{},
		&model.Component{},
		&model.InspectionRecord{},
		&model.InventoryItem{},
		&model.ReplenishmentRequest{},
		&model.QCTest{},
		&model.SequenceCounter{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := database.Seed(db); err != nil {
		log.Fatal("Failed to seed catalogs", zap.Error(err))
	}
	log.Info("Migrations and catalog seed applied")

	// Initialize redis cache (optional)
	redisClient, err := cache.NewRedisClient(&appConfig.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	if redisClient == nil {
		log.Info("Redis not configured, running without component cache")
	} else {
		log.Info("Redis connected", zap.String("addr", appConfig.Redis.Addr))
	}

	// Shared lifecycle service layer, consumed by every role surface
	componentCache := service.NewComponentCache(redisClient)
	idgen := service.NewIDGenerator()
	ledger := service.NewLedger(db)
	registry := service.NewRegistry(db, idgen, ledger, componentCache)
	qcEngine := service.NewQCEngine(db, componentCache)
	coordinator := service.NewCoordinator(db, registry, idgen)
	tracker := service.NewTracker(db, componentCache)

	// Handlers
	authHandler := handler.NewAuthHandler(db, appConfig.JWT.ExpirationHours)
	manufacturerHandler := handler.NewManufacturerHandler(db, registry, coordinator, appConfig.Inventory.DefaultWarehouse)
	componentHandler := handler.NewComponentHandler(registry, tracker)
	inspectionHandler := handler.NewInspectionHandler(db, registry, tracker)
	qualityHandler := handler.NewQualityHandler(qcEngine)
	warehouseHandler := handler.NewWarehouseHandler(ledger, coordinator)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = appConfig.Server.RequestTimeout
	e.Server.WriteTimeout = appConfig.Server.RequestTimeout

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Session management
	authAPI := e.Group("/auth", mid.RateLimit("10-M"))
	authAPI.POST("/register", authHandler.Register)
	authAPI.POST("/login", authHandler.Login)
	authAPI.GET("/me", authHandler.Me, mid.AuthMiddleware)
	authAPI.GET("/logout", authHandler.Logout)

	// Manufacturer dashboard
	manufacturerAPI := e.Group("/manufacturer", mid.AuthMiddleware, mid.RequireRole(model.RoleManufacturer))
	manufacturerAPI.GET("/mydetails", manufacturerHandler.MyDetails)
	manufacturerAPI.POST("/components/generate_qr", manufacturerHandler.GenerateQR)
	manufacturerAPI.GET("/components/list", manufacturerHandler.ListComponents)
	manufacturerAPI.GET("/components/daily_counts_local", manufacturerHandler.DailyCountsLocal)
	manufacturerAPI.GET("/components/daily_counts_by_date", manufacturerHandler.DailyCountsByDate)
	manufacturerAPI.GET("/components/:id", manufacturerHandler.GetComponent)
	manufacturerAPI.GET("/requests", manufacturerHandler.ListRequests)
	manufacturerAPI.POST("/requests/:id/accept", manufacturerHandler.AcceptRequest)
	manufacturerAPI.POST("/requests/:id/reject", manufacturerHandler.RejectRequest)

	// Quality-control dashboard
	qualityAPI := e.Group("/quality", mid.AuthMiddleware, mid.RequireRole(model.RoleQualityInspector))
	qualityAPI.GET("/tests", qualityHandler.Tests)
	qualityAPI.GET("/pending", qualityHandler.Pending)
	qualityAPI.POST("/inspect", qualityHandler.Inspect)

	// Warehouse dashboard
	warehouseAPI := e.Group("/warehouse", mid.AuthMiddleware, mid.RequireRole(model.RoleWarehouseManager))
	warehouseAPI.GET("/inventory", warehouseHandler.Inventory)
	warehouseAPI.POST("/inventory/restock", warehouseHandler.Restock)
	warehouseAPI.POST("/requests", warehouseHandler.CreateRequest)
	warehouseAPI.GET("/requests", warehouseHandler.ListRequests)

	// Field inspection mobile client
	inspectionAPI := e.Group("/inspection", mid.AuthMiddleware)
	inspectionAPI.GET("/component/:id", inspectionHandler.GetComponent)
	inspectionAPI.POST("/report", inspectionHandler.Report)
	inspectionAPI.GET("/history/:id", inspectionHandler.History)
	inspectionAPI.POST("/replace/:id", inspectionHandler.Replace)

	// Installation-team view
	componentsAPI := e.Group("/components", mid.AuthMiddleware)
	componentsAPI.GET("/", componentHandler.List)
	componentsAPI.GET("/:id", componentHandler.Get)
	componentsAPI.POST("/:id/install", componentHandler.Install)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server error", zap.Error(err))
	}
}
