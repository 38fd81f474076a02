// Command proofd exposes the contribution scoring engine over HTTP for
// development and operator tooling.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dlp-labs/proof-of-contribution/internal/config"
	"github.com/dlp-labs/proof-of-contribution/internal/database"
	"github.com/dlp-labs/proof-of-contribution/internal/errors"
	"github.com/dlp-labs/proof-of-contribution/internal/monitoring"
	"github.com/dlp-labs/proof-of-contribution/internal/ownership"
	"github.com/dlp-labs/proof-of-contribution/internal/proof"
	"github.com/dlp-labs/proof-of-contribution/internal/ratelimit"
	"github.com/dlp-labs/proof-of-contribution/internal/types"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		errors.Log(errors.ToAppError(err))
		os.Exit(1)
	}

	var repo *database.Repository
	if cfg.DataDir != "" {
		db, err := database.NewDB(cfg.DataDir)
		if err != nil {
			slog.Error("Failed to initialize verdict archive", "error", err)
			os.Exit(1)
		}
		defer errors.SafeClose(db, "verdict archive")
		repo = database.NewRepository(db)
	}

	appLogger := monitoring.NewLogger()
	appMetrics := monitoring.NewMetrics()

	ownershipClient := ownership.NewClient(cfg.ValidatorBaseURL, cfg.JWTSecretKey, cfg.JWTExpiration, cfg.RequestTimeout, appLogger)
	engine := proof.NewEngine(cfg, ownershipClient, repo, appLogger, appMetrics)

	limiter := ratelimit.NewLimiter(ratelimit.DefaultConfig())

	r := gin.New()
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	r.Use(limiter.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"metrics":   appMetrics.GetStats(),
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	r.POST("/prove", func(c *gin.Context) {
		appMetrics.IncrementRequest()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
		defer cancel()

		var req types.ProveRequest
		if err := c.BindJSON(&req); err != nil {
			appMetrics.IncrementError()
			appErr := errors.NewValidationError("input_dir is required")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		slog.Info("Starting proof run", "input_dir", req.InputDir, "ip", c.ClientIP())

		response, err := engine.GenerateForDir(ctx, req.InputDir)
		if err != nil {
			appMetrics.IncrementError()
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		c.JSON(http.StatusOK, response)
	})

	r.GET("/verdicts", func(c *gin.Context) {
		if repo == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verdict archive not configured"})
			return
		}

		limit := 50
		if limitStr := c.Query("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
				limit = l
			}
		}

		records, err := repo.RecentVerdicts(limit)
		if err != nil {
			appLogger.APIErrorLogger(err, "GET", "/verdicts", c.ClientIP(), http.StatusInternalServerError)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve verdicts"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"verdicts":  records,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
