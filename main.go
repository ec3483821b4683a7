package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spandan3/smart-waste-classifier/internal/auth"
	"github.com/spandan3/smart-waste-classifier/internal/classifier"
	"github.com/spandan3/smart-waste-classifier/internal/dashboard"
	"github.com/spandan3/smart-waste-classifier/internal/handlers"
	"github.com/spandan3/smart-waste-classifier/internal/logging"
	"github.com/spandan3/smart-waste-classifier/internal/preview"
)

type config struct {
	Addr            string
	ClassifyURL     string
	ClassifyTimeout time.Duration
	PreviewBackend  string
	RedisAddr       string
	PreviewSecret   string
	PreviewTTL      time.Duration
}

func loadConfig(logger *zap.Logger) config {
	cfg := config{
		Addr:            getEnv("DASHBOARD_ADDR", ":8080"),
		ClassifyURL:     getEnv("CLASSIFY_URL", classifier.DefaultEndpoint),
		ClassifyTimeout: getDuration("CLASSIFY_TIMEOUT", 30*time.Second, logger),
		PreviewBackend:  getEnv("PREVIEW_BACKEND", "memory"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		PreviewSecret:   os.Getenv("PREVIEW_SECRET"),
		PreviewTTL:      getDuration("PREVIEW_TTL", time.Hour, logger),
	}
	if cfg.PreviewSecret == "" {
		// Tokens only need to outlive this process.
		cfg.PreviewSecret = uuid.NewString()
		logger.Info("PREVIEW_SECRET not set, using a per-process secret")
	}
	return cfg
}

func main() {
	logger, err := logging.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg := loadConfig(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	store := initPreviewStore(ctx, cfg, logger)

	signer, err := auth.NewPreviewSigner(cfg.PreviewSecret, cfg.PreviewTTL)
	if err != nil {
		logger.Fatal("failed to build preview signer", zap.Error(err))
	}

	client := classifier.NewHTTPClient(cfg.ClassifyURL, cfg.ClassifyTimeout, logger)
	controller := dashboard.NewController(store, client, logger)
	defer controller.Close(context.Background())

	r := gin.Default()
	r.MaxMultipartMemory = handlers.MaxMultipartMemory
	handlers.RegisterRoutes(r, controller, store, signer, logger)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	logger.Info("waste classifier dashboard listening",
		zap.String("addr", cfg.Addr),
		zap.String("classify_url", client.Endpoint()),
		zap.String("preview_backend", cfg.PreviewBackend))
	if err := serveHTTPServer(server, 15*time.Second, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func initPreviewStore(ctx context.Context, cfg config, logger *zap.Logger) preview.Store {
	switch cfg.PreviewBackend {
	case "redis":
		redisCtx, redisCancel := context.WithTimeout(ctx, 5*time.Second)
		defer redisCancel()
		return preview.NewRedisStore(preview.NewRedisCache(initRedis(redisCtx, cfg.RedisAddr, logger)), cfg.PreviewTTL, logger)
	case "memory", "":
		return preview.NewMemoryStore()
	default:
		logger.Fatal("unknown preview backend", zap.String("backend", cfg.PreviewBackend))
		return nil
	}
}

func initRedis(ctx context.Context, addr string, zapLogger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err), zap.String("addr", addr))
	}
	return client
}

func serveHTTPServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	return serveHTTPServerWithOptions(server, shutdownTimeout, logger, nil, nil)
}

func serveHTTPServerWithOptions(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	var (
		sigCh       <-chan os.Signal
		stopSignals func()
	)

	if signalCh != nil {
		sigCh = signalCh
		stopSignals = func() {}
	} else {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		sigCh = ch
		stopSignals = func() {
			signal.Stop(ch)
		}
	}
	defer stopSignals()

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-sigCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, logger *zap.Logger) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("invalid duration, using default", zap.String("key", key), zap.String("value", raw), zap.Error(err))
		return fallback
	}
	return d
}
