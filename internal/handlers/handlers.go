package handlers

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spandan3/smart-waste-classifier/internal/auth"
	"github.com/spandan3/smart-waste-classifier/internal/dashboard"
	"github.com/spandan3/smart-waste-classifier/internal/preview"
	"github.com/spandan3/smart-waste-classifier/internal/waste"
)

// MaxMultipartMemory is how much of an upload gin keeps in memory before
// spilling to disk. It is not a size limit.
const MaxMultipartMemory = 10 << 20

const notImageNotice = "Only image files can be dropped here."

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the web dashboard and its JSON twin.
type Handler struct {
	controller *dashboard.Controller
	store      preview.Store
	signer     *auth.PreviewSigner
	logger     *zap.Logger
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, controller *dashboard.Controller, store preview.Store, signer *auth.PreviewSigner, logger *zap.Logger) {
	h := &Handler{
		controller: controller,
		store:      store,
		signer:     signer,
		logger:     logger.Named("handlers"),
	}

	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(templateFS, "templates/*.html")))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/", h.page)
	router.POST("/select", h.selectForm)
	router.POST("/classify", h.classifyForm)
	router.POST("/reset", h.resetForm)
	router.GET("/preview/:token", h.preview)

	api := router.Group("/api")
	api.GET("/state", h.state)
	api.POST("/select", h.selectAPI)
	api.POST("/classify", h.classifyAPI)
	api.POST("/reset", h.resetAPI)
	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, h.controller.Stats())
	})
}

type pageData struct {
	Snapshot   dashboard.Snapshot
	PreviewURL string
	BadgeClass string
	Confidence string
	Tip        string
	ProTip     string
	Notice     string
	ShowIntro  bool
}

func (h *Handler) page(c *gin.Context) {
	snap := h.controller.Snapshot()
	data := pageData{
		Snapshot:   snap,
		PreviewURL: h.previewURL(snap.PreviewRef),
		ProTip:     waste.ProTip,
		ShowIntro:  !snap.HasFile() && snap.Result == nil,
	}
	if c.Query("notice") == "not-image" {
		data.Notice = notImageNotice
	}
	if snap.Result != nil {
		data.BadgeClass = waste.BadgeFor(snap.Result.Prediction).Class
		data.Confidence = formatConfidence(snap.Result.Confidence)
		data.Tip, _ = snap.Tip()
	}
	c.HTML(http.StatusOK, "dashboard.html", data)
}

func (h *Handler) selectForm(c *gin.Context) {
	if err := h.selectFile(c); err != nil {
		if errors.Is(err, dashboard.ErrNotImage) {
			c.Redirect(http.StatusSeeOther, "/?notice=not-image")
			return
		}
		h.logger.Warn("form selection failed", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) classifyForm(c *gin.Context) {
	_ = h.classify(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) resetForm(c *gin.Context) {
	h.controller.Reset(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

// stateResponse is the JSON view of the dashboard.
type stateResponse struct {
	dashboard.Snapshot
	PreviewURL string `json:"preview_url,omitempty"`
	Tip        string `json:"tip,omitempty"`
	ShowProTip bool   `json:"show_pro_tip"`
}

func (h *Handler) stateBody() stateResponse {
	snap := h.controller.Snapshot()
	tip, _ := snap.Tip()
	return stateResponse{
		Snapshot:   snap,
		PreviewURL: h.previewURL(snap.PreviewRef),
		Tip:        tip,
		ShowProTip: snap.ShowProTip(),
	}
}

func (h *Handler) state(c *gin.Context) {
	c.JSON(http.StatusOK, h.stateBody())
}

func (h *Handler) selectAPI(c *gin.Context) {
	err := h.selectFile(c)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, h.stateBody())
	case errors.Is(err, dashboard.ErrNotImage):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, errMissingFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
	}
}

func (h *Handler) classifyAPI(c *gin.Context) {
	err := h.classify(c)
	var classErr *dashboard.ClassificationError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, h.stateBody())
	case errors.Is(err, dashboard.ErrClassifyInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &classErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": classErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
	}
}

func (h *Handler) resetAPI(c *gin.Context) {
	h.controller.Reset(c.Request.Context())
	c.JSON(http.StatusOK, h.stateBody())
}

func (h *Handler) preview(c *gin.Context) {
	ref, err := h.signer.Verify(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "preview not found"})
		return
	}
	blob, err := h.store.Open(c.Request.Context(), ref)
	if err != nil {
		if !errors.Is(err, preview.ErrNotFound) {
			h.logger.Error("failed to open preview", zap.Error(err), zap.String("preview_ref", string(ref)))
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "preview not found"})
		return
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(blob.Data).String()
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, blob.Data)
}

var errMissingFile = errors.New("file is required")

func (h *Handler) selectFile(c *gin.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return errMissingFile
	}
	src, err := header.Open()
	if err != nil {
		return errMissingFile
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	file := dashboard.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	if file.ContentType == "" || file.ContentType == "application/octet-stream" {
		file.ContentType = mimetype.Detect(data).String()
	}
	return h.controller.SelectFile(c.Request.Context(), file, dashboard.ParseSource(c.PostForm("source")))
}

// classify detaches from the request so a browser navigating away does not
// abort the call; the response then lands unobserved.
func (h *Handler) classify(c *gin.Context) error {
	return h.controller.Classify(context.WithoutCancel(c.Request.Context()))
}

func (h *Handler) previewURL(ref preview.Ref) string {
	if ref == "" {
		return ""
	}
	token, err := h.signer.Sign(ref)
	if err != nil {
		h.logger.Error("failed to sign preview", zap.Error(err), zap.String("preview_ref", string(ref)))
		return ""
	}
	return "/preview/" + token
}

// formatConfidence prints the service's number as-is: no rounding, no clamping.
func formatConfidence(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
