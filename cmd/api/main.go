package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"database/sql"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/kraftmortgages/calcserv/internal/cache"
	"github.com/kraftmortgages/calcserv/internal/config"
	"github.com/kraftmortgages/calcserv/internal/handler"
	"github.com/kraftmortgages/calcserv/internal/integrations/boc"
	"github.com/kraftmortgages/calcserv/internal/middleware"
	"github.com/kraftmortgages/calcserv/internal/repository"
	"github.com/kraftmortgages/calcserv/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize scenario storage. Without DB_CONN scenarios live in memory
	// for the lifetime of the process.
	var store repository.ScenarioStore
	if cfg.DBConn != "" {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		store = repository.NewRepository(db)
	} else {
		logger.Warn("DB_CONN not set, scenarios will not survive restarts")
		store = repository.NewMemoryStore()
	}

	// Initialize result cache
	var resultCache cache.Cache
	if cfg.RedisAddr != "" {
		resultCache = cache.NewRedis(cfg.RedisAddr)
	} else {
		resultCache = cache.NewMemory()
	}

	// Load builder program catalog
	catalog, err := cfg.LoadPrograms()
	if err != nil {
		logger.Fatalf("Failed to load builder programs: %v", err)
	}

	// Initialize layers
	svc := service.NewService(store, resultCache, logger, catalog)
	bocClient := boc.NewClient(cfg.BOCURL, cfg.RateMargin, logger)
	h := handler.NewHandler(svc, bocClient, logger)

	// Refresh the posted rate on startup and on a daily schedule
	if err := bocClient.Refresh(); err != nil {
		logger.Warnf("Initial posted rate refresh failed: %v", err)
	}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 6 * * *", func() {
		if err := bocClient.Refresh(); err != nil {
			logger.Warnf("Posted rate refresh failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule rate refresh: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	limiter := middleware.NewRateLimiter(60, time.Minute)
	defer limiter.Stop()

	r := h.Routes()
	r.Use(middleware.RateLimit(limiter))

	// Start server
	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
}
