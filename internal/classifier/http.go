package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spandan3/smart-waste-classifier/internal/logging"
	"github.com/spandan3/smart-waste-classifier/internal/waste"
)

// FormField is the multipart field the service reads the image from.
const FormField = "file"

// HTTPClient posts images as multipart form data.
type HTTPClient struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewHTTPClient returns a client for endpoint. A zero timeout leaves the
// request bounded only by its context.
func NewHTTPClient(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.Named("classifier"),
	}
}

// Endpoint returns the URL requests are sent to.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// Classify sends one request. Any transport error, non-2xx status or
// undecodable body yields ErrClassification; the server's error detail is
// discarded.
func (c *HTTPClient) Classify(ctx context.Context, upload Upload) (*Result, error) {
	body, contentType, err := encodeUpload(upload)
	if err != nil {
		return nil, c.fail("classifier.encode", upload.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, c.fail("classifier.new_request", upload.Name, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail("classifier.post", upload.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, c.fail("classifier.status", upload.Name, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail("classifier.read_body", upload.Name, err)
	}

	result, err := decodeResult(raw)
	if err != nil {
		return nil, c.fail("classifier.decode", upload.Name, err)
	}
	if !waste.IsKnown(result.Prediction) {
		c.logger.Warn("service returned an unknown label",
			zap.String("label", string(result.Prediction)),
			zap.Float64("confidence", result.Confidence))
	}
	return result, nil
}

func (c *HTTPClient) fail(operation, fileName string, cause error) error {
	c.logger.Error("classification request failed",
		zap.String("operation", operation),
		zap.String("file", fileName),
		zap.String("endpoint", c.endpoint),
		zap.Error(cause))
	return fmt.Errorf("%w: %w", ErrClassification, logging.NewOperationError(operation, "", cause))
}

func encodeUpload(upload Upload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FormField, escapeQuotes(upload.Name)))
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// decodeResult requires a JSON object but does not validate its fields: a
// missing or mistyped "class" or "confidence" leaves the zero value.
func decodeResult(raw []byte) (*Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	result := &Result{}
	if v, ok := fields["class"]; ok {
		var label string
		if json.Unmarshal(v, &label) == nil {
			result.Prediction = waste.Label(label)
		}
	}
	if v, ok := fields["confidence"]; ok {
		var confidence float64
		if json.Unmarshal(v, &confidence) == nil {
			result.Confidence = confidence
		}
	}
	return result, nil
}
