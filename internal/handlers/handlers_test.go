package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spandan3/smart-waste-classifier/internal/auth"
	"github.com/spandan3/smart-waste-classifier/internal/classifier"
	"github.com/spandan3/smart-waste-classifier/internal/dashboard"
	"github.com/spandan3/smart-waste-classifier/internal/preview"
	"github.com/spandan3/smart-waste-classifier/internal/waste"
)

const testPreviewSecret = "test-secret"

type stubClassifier struct {
	result *classifier.Result
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, upload classifier.Upload) (*classifier.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type testEnv struct {
	router     *gin.Engine
	controller *dashboard.Controller
	store      *preview.MemoryStore
	client     *stubClassifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := preview.NewMemoryStore()
	client := &stubClassifier{}
	controller := dashboard.NewController(store, client, zap.NewNop())
	signer, err := auth.NewPreviewSigner(testPreviewSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to build signer: %v", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = MaxMultipartMemory
	RegisterRoutes(router, controller, store, signer, zap.NewNop())

	return &testEnv{router: router, controller: controller, store: store, client: client}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func buildMultipartBody(t *testing.T, fileName, contentType string, payload []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("failed to write payload: %v", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

func (e *testEnv) selectFile(t *testing.T, path, fileName, contentType string, payload []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := buildMultipartBody(t, fileName, contentType, payload, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	return e.do(t, req)
}

func (e *testEnv) page(t *testing.T) string {
	t.Helper()
	resp := e.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.Code)
	}
	return resp.Body.String()
}

func TestIdlePageShowsHowItWorks(t *testing.T) {
	env := newTestEnv(t)
	page := env.page(t)

	if !strings.Contains(page, `id="how-it-works"`) {
		t.Fatal("expected how-it-works card")
	}
	for _, id := range []string{`id="classify-button"`, `id="result"`, `id="error"`, `id="preview"`} {
		if strings.Contains(page, id) {
			t.Fatalf("did not expect %s on idle page", id)
		}
	}
}

func TestPlasticScenarioRendersResultAndProTip(t *testing.T) {
	env := newTestEnv(t)
	env.client.result = &classifier.Result{Prediction: waste.Plastic, Confidence: 87}

	resp := env.selectFile(t, "/select", "photo.jpg", "image/jpeg", []byte("jpeg"), nil)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", resp.Code)
	}
	resp = env.do(t, httptest.NewRequest(http.MethodPost, "/classify", nil))
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", resp.Code)
	}

	page := env.page(t)
	checks := []string{
		`id="prediction">plastic<`,
		`id="confidence">87%<`,
		`style="width: 87%"`,
		"Check for recycling numbers 1-7. Rinse bottles and containers before recycling.",
		`id="protip"`,
		`id="file-name">photo.jpg<`,
		`id="preview"`,
	}
	for _, want := range checks {
		if !strings.Contains(page, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
	if strings.Contains(page, `id="how-it-works"`) {
		t.Fatal("did not expect how-it-works card with a result")
	}
}

func TestTrashScenarioOmitsProTip(t *testing.T) {
	env := newTestEnv(t)
	env.client.result = &classifier.Result{Prediction: waste.Trash, Confidence: 95}

	env.selectFile(t, "/select", "photo.jpg", "image/jpeg", []byte("jpeg"), nil)
	env.do(t, httptest.NewRequest(http.MethodPost, "/classify", nil))

	page := env.page(t)
	if !strings.Contains(page, `id="prediction">trash<`) {
		t.Fatal("expected trash label")
	}
	if strings.Contains(page, `id="protip"`) {
		t.Fatal("did not expect pro-tip for trash")
	}
}

func TestServerErrorScenarioShowsFixedMessage(t *testing.T) {
	env := newTestEnv(t)
	env.client.err = errors.New("unexpected status 500")

	env.selectFile(t, "/select", "photo.jpg", "image/jpeg", []byte("jpeg"), nil)
	env.do(t, httptest.NewRequest(http.MethodPost, "/classify", nil))

	page := env.page(t)
	if !strings.Contains(page, classifier.FailureMessage) {
		t.Fatal("expected fixed failure message")
	}
	if strings.Contains(page, `id="result"`) || strings.Contains(page, `id="tips"`) {
		t.Fatal("did not expect result block on failure")
	}
}

func TestDropOfNonImageIsRejected(t *testing.T) {
	env := newTestEnv(t)

	resp := env.selectFile(t, "/api/select", "notes.txt", "text/plain", []byte("hello"), map[string]string{"source": "drop"})
	if resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status %d, got %d", http.StatusUnsupportedMediaType, resp.Code)
	}
	if env.controller.Snapshot().State != dashboard.Idle {
		t.Fatal("expected state to remain idle")
	}
}

func TestFormDropOfNonImageRedirectsWithNotice(t *testing.T) {
	env := newTestEnv(t)

	resp := env.selectFile(t, "/select", "notes.txt", "text/plain", []byte("hello"), map[string]string{"source": "drop"})
	if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/?notice=not-image" {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Header().Get("Location"))
	}

	page := env.do(t, httptest.NewRequest(http.MethodGet, "/?notice=not-image", nil)).Body.String()
	if !strings.Contains(page, notImageNotice) {
		t.Fatal("expected notice on page")
	}
}

func TestSelectSniffsMissingContentType(t *testing.T) {
	env := newTestEnv(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	resp := env.selectFile(t, "/api/select", "drop.png", "application/octet-stream", png, map[string]string{"source": "drop"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.Code, resp.Body.String())
	}
	if got := env.controller.Snapshot().ContentType; got != "image/png" {
		t.Fatalf("expected sniffed image/png, got %s", got)
	}
}

func TestSelectRequiresFile(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/select", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	if resp := env.do(t, req); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.Code)
	}
}

func TestAPIClassifyReturnsState(t *testing.T) {
	env := newTestEnv(t)
	env.client.result = &classifier.Result{Prediction: waste.Glass, Confidence: 42.5}

	env.selectFile(t, "/api/select", "jar.png", "image/png", []byte("png"), nil)
	resp := env.do(t, httptest.NewRequest(http.MethodPost, "/api/classify", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.Code)
	}

	var body struct {
		State      string  `json:"state"`
		PreviewURL string  `json:"preview_url"`
		Tip        string  `json:"tip"`
		ShowProTip bool    `json:"show_pro_tip"`
		Result     *struct {
			Prediction string  `json:"prediction"`
			Confidence float64 `json:"confidence"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.State != "resulted" || body.Result == nil || body.Result.Prediction != "glass" || body.Result.Confidence != 42.5 {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
	if !body.ShowProTip || !strings.HasPrefix(body.Tip, "Rinse glass containers") {
		t.Fatalf("unexpected tips: %s", resp.Body.String())
	}
	if !strings.HasPrefix(body.PreviewURL, "/preview/") {
		t.Fatalf("unexpected preview url: %s", body.PreviewURL)
	}
}

func TestAPIClassifyFailureReturnsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.client.err = errors.New("boom")

	env.selectFile(t, "/api/select", "jar.png", "image/png", []byte("png"), nil)
	resp := env.do(t, httptest.NewRequest(http.MethodPost, "/api/classify", nil))
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.Code)
	}
	if !strings.Contains(resp.Body.String(), classifier.FailureMessage) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestPreviewIsServedUntilReset(t *testing.T) {
	env := newTestEnv(t)
	env.selectFile(t, "/api/select", "photo.jpg", "image/jpeg", []byte("jpeg-bytes"), nil)

	stateResp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	var state struct {
		PreviewURL string `json:"preview_url"`
	}
	if err := json.Unmarshal(stateResp.Body.Bytes(), &state); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	resp := env.do(t, httptest.NewRequest(http.MethodGet, state.PreviewURL, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.Code)
	}
	if resp.Body.String() != "jpeg-bytes" || resp.Header().Get("Content-Type") != "image/jpeg" {
		t.Fatalf("unexpected preview response: %s %s", resp.Header().Get("Content-Type"), resp.Body.String())
	}

	env.do(t, httptest.NewRequest(http.MethodPost, "/reset", nil))

	if resp := env.do(t, httptest.NewRequest(http.MethodGet, state.PreviewURL, nil)); resp.Code != http.StatusNotFound {
		t.Fatalf("expected revoked preview to 404, got %d", resp.Code)
	}
	if env.store.Len() != 0 {
		t.Fatalf("expected no live previews, got %d", env.store.Len())
	}
}

func TestPreviewRejectsForgedToken(t *testing.T) {
	env := newTestEnv(t)
	if resp := env.do(t, httptest.NewRequest(http.MethodGet, "/preview/not-a-token", nil)); resp.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.Code)
	}
}

func TestFormatConfidenceIsVerbatim(t *testing.T) {
	cases := map[float64]string{87: "87", 87.25: "87.25", 0: "0", 120.5: "120.5", -3: "-3"}
	for in, want := range cases {
		if got := formatConfidence(in); got != want {
			t.Fatalf("formatConfidence(%v) = %s, want %s", in, got, want)
		}
	}
}
