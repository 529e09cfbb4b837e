package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sunnytsang0917/office-inventory-sub002/internal/config"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/handler"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/repository"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/service"
	"github.com/sunnytsang0917/office-inventory-sub002/internal/middleware"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting office-inventory service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to auto-migrate tables", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, rdb, cfg)
	handlers := handler.NewHandlers(services)

	if err := services.Auth.EnsureAdmin(context.Background()); err != nil {
		zapLogger.Fatal("Failed to ensure admin account", zap.Error(err))
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// 健康检查
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "office-inventory"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "office-inventory"})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":    "office-inventory",
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// 登录不走认证
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/refresh", handlers.Auth.Refresh)
		auth.POST("/logout", handlers.Auth.Logout)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		v1.GET("/auth/me", handlers.Auth.Me)

		// 库位管理
		locations := v1.Group("/locations")
		{
			locations.GET("", handlers.Location.List)
			locations.GET("/tree", handlers.Location.Tree)
			locations.GET("/:id", handlers.Location.Get)
			locations.GET("/:id/descendants", handlers.Location.Descendants)
			locations.GET("/:id/stock", handlers.Stock.LocationSummary)
			locations.POST("", middleware.RequireRole("admin"), handlers.Location.Create)
			locations.PUT("/:id", middleware.RequireRole("admin"), handlers.Location.Update)
			locations.PUT("/:id/parent", middleware.RequireRole("admin"), handlers.Location.Reparent)
			locations.PUT("/status", middleware.RequireRole("admin"), handlers.Location.BatchStatus)
			locations.DELETE("/:id", middleware.RequireRole("admin"), handlers.Location.Delete)
		}

		// 物品管理
		items := v1.Group("/items")
		{
			items.GET("", handlers.Item.List)
			items.GET("/categories", handlers.Item.Categories)
			items.GET("/:id", handlers.Item.Get)
			items.GET("/:id/stock", handlers.Stock.Total)
			items.POST("", middleware.RequireRole("admin"), handlers.Item.Create)
			items.POST("/import", middleware.RequireRole("admin"), handlers.Item.Import)
			items.PUT("/:id", middleware.RequireRole("admin"), handlers.Item.Update)
			items.PUT("/:id/default-location", middleware.RequireRole("admin"), handlers.Item.SetDefaultLocation)
			items.DELETE("/:id", middleware.RequireRole("admin"), handlers.Item.Delete)
		}

		// 出入库流水
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", handlers.Transaction.List)
			transactions.GET("/:id", handlers.Transaction.Get)
			transactions.POST("", handlers.Transaction.Create)
			transactions.POST("/batch", handlers.Transaction.CreateBatch)
			transactions.POST("/:id/reverse", handlers.Transaction.Reverse)
			transactions.PUT("/:id", handlers.Transaction.Update)
			transactions.DELETE("/:id", middleware.RequireRole("admin"), handlers.Transaction.Delete)
		}

		// 库存查询
		stock := v1.Group("/stock")
		{
			stock.GET("", handlers.Stock.StockAt)
			stock.GET("/alerts", handlers.Stock.Alerts)
		}

		// 报表
		reports := v1.Group("/reports")
		{
			reports.GET("/movements", handlers.Report.MovementSummary)
			reports.GET("/top-outbound", handlers.Report.TopOutbound)
			reports.GET("/stock", handlers.Report.StockReport)
			reports.GET("/transactions/export", handlers.Report.ExportTransactions)
			reports.GET("/stock/export", handlers.Report.ExportStock)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	return db, nil
}
