package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"purchase-order-relay-go/internal/config"
	"purchase-order-relay-go/internal/handler"
	"purchase-order-relay-go/internal/metrics"
	"purchase-order-relay-go/internal/notion"
	"purchase-order-relay-go/internal/relay"
	"purchase-order-relay-go/internal/scheduler"
	"purchase-order-relay-go/internal/slack"
	"purchase-order-relay-go/internal/store"
)

func main() {
	once := flag.Bool("once", false, "run a single sync and exit")
	flag.Parse()

	// Configure logging
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Purchase Order Relay")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Configuration validation failed: %v", err)
	}

	// Audit database is optional; without it the relay still runs,
	// only the attempt log is skipped.
	var repo *store.Repository
	if cfg.Database.Enabled() {
		db, err := store.Open(&cfg.Database)
		if err != nil {
			logrus.Fatalf("Failed to initialize audit database: %v", err)
		}
		repo = store.NewRepository(db)
	} else {
		logrus.Info("No audit database configured, attempt log disabled")
	}

	m := metrics.NewMetrics()

	client := notion.NewClient(&cfg.Notion)
	notifier := slack.NewNotifier(&cfg.Slack)

	var audit relay.Auditor
	if repo != nil {
		audit = repo
	}
	r := relay.New(&cfg.Notion, client, notifier, audit, m)

	if *once {
		if err := r.Run(context.Background()); err != nil {
			logrus.Errorf("Sync run failed: %v", err)
			os.Exit(1)
		}
		return
	}

	sched := scheduler.NewScheduler(&cfg.Scheduler, r)

	handlers := handler.NewHandlers(repo, sched, m)
	router := setupRouter(handlers)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start scheduler
	if err := sched.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	sched.Wait()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	logrus.Info("Server stopped gracefully")
}

// setupRouter sets up the HTTP router with middleware
func setupRouter(handlers *handler.Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware())

	handlers.SetupRoutes(router)

	return router
}

// loggerMiddleware adds logging middleware
func loggerMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	})
}
