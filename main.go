package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"pdf_toolkit/api"
	"pdf_toolkit/download"
	pdfPkg "pdf_toolkit/pdf"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxFileSize is the default maximum file size (50MB)
	DefaultMaxFileSize = 50 * 1024 * 1024

	// DefaultPort is the default server port
	DefaultPort = "8080"

	// ServerReadTimeout is the HTTP server read timeout
	ServerReadTimeout = 30 * time.Second

	// ServerWriteTimeout is the HTTP server write timeout
	ServerWriteTimeout = 60 * time.Second

	// ServerIdleTimeout is the HTTP server idle timeout
	ServerIdleTimeout = 60 * time.Second

	// GracefulShutdownTimeout is the timeout for graceful shutdown
	GracefulShutdownTimeout = 10 * time.Second
)

func main() {
	// A missing .env is fine; real environment variables take precedence.
	_ = godotenv.Load()

	logger := newLogger(getEnv("LOG_LEVEL", "info"), getEnv("LOG_FORMAT", "text"))

	config, err := loadConfig()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := download.NewStore(config.DownloadTTL, logger)
	go store.Run(ctx, download.DefaultSweepInterval)

	gin.SetMode(getEnv("GIN_MODE", gin.ReleaseMode))
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(logger))
	r.MaxMultipartMemory = config.MaxFileSize

	api.SetupRoutes(r, api.NewService(config, store, logger))
	r.GET("/health", api.HandleHealth)

	// Create HTTP server with timeout settings
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", config.Port),
		Handler:      r,
		ReadTimeout:  ServerReadTimeout,
		WriteTimeout: ServerWriteTimeout,
		IdleTimeout:  ServerIdleTimeout,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":          srv.Addr,
			"max_file_size": config.MaxFileSize,
			"max_files":     config.MaxFiles,
			"page_policy":   config.PagePolicy.String(),
			"download_ttl":  config.DownloadTTL.String(),
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}

	logger.Info("server exited gracefully")
}

func loadConfig() (*api.Config, error) {
	policy, err := pdfPkg.ParsePagePolicy(getEnv("PAGE_POLICY", "best-effort"))
	if err != nil {
		return nil, err
	}
	return &api.Config{
		Port:         getEnv("PORT", DefaultPort),
		MaxFileSize:  getEnvInt64("MAX_FILE_SIZE", DefaultMaxFileSize),
		MaxFiles:     int(getEnvInt64("MAX_FILES", api.DefaultMaxFiles)),
		PagePolicy:   policy,
		DownloadTTL:  getEnvDuration("DOWNLOAD_TTL", download.DefaultTTL),
		ReleaseDelay: getEnvDuration("RELEASE_DELAY", api.DefaultReleaseDelay),
	}, nil
}

func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
