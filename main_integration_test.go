package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spandan3/smart-waste-classifier/internal/auth"
	"github.com/spandan3/smart-waste-classifier/internal/classifier"
	"github.com/spandan3/smart-waste-classifier/internal/dashboard"
	"github.com/spandan3/smart-waste-classifier/internal/handlers"
	"github.com/spandan3/smart-waste-classifier/internal/preview"
	"github.com/spandan3/smart-waste-classifier/internal/waste"
)

type blockingClassifier struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingClassifier) Classify(ctx context.Context, upload classifier.Upload) (*classifier.Result, error) {
	close(b.started)
	<-b.release
	return &classifier.Result{Prediction: waste.Metal, Confidence: 77}, nil
}

func TestServerGracefulShutdownFinishesClassification(t *testing.T) {
	logger := zap.NewNop()
	gin.SetMode(gin.TestMode)

	client := &blockingClassifier{started: make(chan struct{}), release: make(chan struct{})}
	released := false
	defer func() {
		if !released {
			close(client.release)
		}
	}()

	store := preview.NewMemoryStore()
	controller := dashboard.NewController(store, client, logger)
	if err := controller.SelectFile(context.Background(), dashboard.File{Name: "can.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}, dashboard.SourcePicker); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	signer, err := auth.NewPreviewSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}

	router := gin.New()
	handlers.RegisterRoutes(router, controller, store, signer, logger)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	server := &http.Server{Handler: router}

	signalCh := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() {
		done <- serveHTTPServerWithOptions(server, 2*time.Second, logger, listener, signalCh)
	}()

	addr := listener.Addr().String()
	waitForServer(t, addr)

	httpClient := &http.Client{Timeout: 2 * time.Second}
	respCh := make(chan *http.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		resp, err := httpClient.Post("http://"+addr+"/api/classify", "application/json", nil)
		if err != nil {
			errCh <- err
			return
		}
		respCh <- resp
	}()

	select {
	case <-client.started:
	case <-time.After(2 * time.Second):
		t.Fatal("classification did not start in time")
	}

	signalCh <- syscall.SIGTERM

	time.Sleep(50 * time.Millisecond)
	close(client.release)
	released = true

	select {
	case resp := <-respCh:
		t.Cleanup(func() { resp.Body.Close() })
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("unexpected status: %d body: %s", resp.StatusCode, string(body))
		}
		if !strings.Contains(string(body), `"prediction":"metal"`) {
			t.Fatalf("unexpected body: %s", string(body))
		}
	case err := <-errCh:
		t.Fatalf("request failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("request did not complete")
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("server did not shutdown cleanly: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not exit after shutdown")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DASHBOARD_ADDR", "CLASSIFY_URL", "CLASSIFY_TIMEOUT", "PREVIEW_BACKEND", "PREVIEW_SECRET", "PREVIEW_TTL"} {
		t.Setenv(key, "")
	}

	cfg := loadConfig(zap.NewNop())
	if cfg.Addr != ":8080" || cfg.ClassifyURL != "http://localhost:5000/classify" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ClassifyTimeout != 30*time.Second || cfg.PreviewTTL != time.Hour {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.PreviewBackend != "memory" || cfg.PreviewSecret == "" {
		t.Fatalf("unexpected preview settings: %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CLASSIFY_URL", "http://classifier:5000/classify")
	t.Setenv("CLASSIFY_TIMEOUT", "5s")
	t.Setenv("PREVIEW_TTL", "not-a-duration")
	t.Setenv("PREVIEW_SECRET", "s3cret")

	cfg := loadConfig(zap.NewNop())
	if cfg.ClassifyURL != "http://classifier:5000/classify" || cfg.ClassifyTimeout != 5*time.Second {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.PreviewTTL != time.Hour {
		t.Fatalf("expected invalid duration to fall back, got %s", cfg.PreviewTTL)
	}
	if cfg.PreviewSecret != "s3cret" {
		t.Fatalf("unexpected secret: %s", cfg.PreviewSecret)
	}
}

func waitForServer(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server %s did not become ready", addr)
}
