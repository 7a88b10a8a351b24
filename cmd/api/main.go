package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/config"
	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/export"
	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/tcat"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repo := eac.NewPostgresRepository(db)
	exportService := export.NewService(logger)
	tcatService := tcat.NewService(logger)

	r := gin.Default()
	api := r.Group("/api/v1")
	export.NewHandler(exportService, repo, logger).RegisterRoutes(api)
	tcat.NewHandler(tcatService, repo, logger).RegisterRoutes(api)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API alive!"})
	})

	if cfg.Export.ScheduleEnabled {
		scheduler := export.NewScheduler(exportService, repo, cfg.Export.OutputDir, logger)
		if err := scheduler.Start(cfg.Export.ScheduleCron); err != nil {
			logger.Fatal("Failed to start export scheduler", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	addr := cfg.Server.GetServerAddr()
	logger.Info("Server running", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
