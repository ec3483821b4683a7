package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spandan3/smart-waste-classifier/internal/classifier"
	"github.com/spandan3/smart-waste-classifier/internal/dashboard"
	"github.com/spandan3/smart-waste-classifier/internal/logging"
	"github.com/spandan3/smart-waste-classifier/internal/preview"
	"github.com/spandan3/smart-waste-classifier/internal/tui"
)

func main() {
	endpoint := flag.String("url", getEnv("CLASSIFY_URL", classifier.DefaultEndpoint), "classification endpoint")
	timeout := flag.Duration("timeout", 30*time.Second, "classification request timeout")
	debugLog := flag.String("debug", "", "write debug logs to this file")
	flag.Parse()

	logger := zap.NewNop()
	if *debugLog != "" {
		l, err := logging.NewDevelopmentLogger(*debugLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open debug log: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := classifier.NewHTTPClient(*endpoint, *timeout, logger)
	controller := dashboard.NewController(preview.NewMemoryStore(), client, logger)
	defer controller.Close(context.Background())

	if err := tui.Run(ctx, controller, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
