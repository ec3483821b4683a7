package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gabriel-vasile/mimetype"

	"github.com/spandan3/smart-waste-classifier/internal/dashboard"
)

type selectedMsg struct {
	path   string
	source dashboard.Source
	err    error
}

type classifiedMsg struct {
	err error
}

type thumbnailMsg struct {
	ref  string
	view string
	err  error
}

// selectFileCmd reads path and hands it to the controller. The content type
// is sniffed from the bytes, which is what the drop filter checks.
func selectFileCmd(ctx context.Context, c *dashboard.Controller, path string, source dashboard.Source) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return selectedMsg{path: path, source: source, err: fmt.Errorf("read %s: %w", path, err)}
		}
		file := dashboard.File{
			Name:        filepath.Base(path),
			ContentType: mimetype.Detect(data).String(),
			Data:        data,
		}
		return selectedMsg{path: path, source: source, err: c.SelectFile(ctx, file, source)}
	}
}

func classifyCmd(ctx context.Context, c *dashboard.Controller) tea.Cmd {
	return func() tea.Msg {
		return classifiedMsg{err: c.Classify(ctx)}
	}
}

func thumbnailCmd(ctx context.Context, c *dashboard.Controller, ref string, width int) tea.Cmd {
	return func() tea.Msg {
		blob, err := c.OpenPreview(ctx)
		if err != nil {
			return thumbnailMsg{ref: ref, err: err}
		}
		view, err := renderThumbnail(blob.Data, width)
		return thumbnailMsg{ref: ref, view: view, err: err}
	}
}

// pastedPath turns what a terminal pastes for a dropped file into a path.
// Terminals quote or backslash-escape paths with spaces, and some send a
// file:// URI.
func pastedPath(raw string) string {
	p := strings.TrimSpace(raw)
	if i := strings.IndexAny(p, "\r\n"); i >= 0 {
		p = strings.TrimSpace(p[:i])
	}
	if len(p) >= 2 && (p[0] == '\'' || p[0] == '"') && p[len(p)-1] == p[0] {
		p = p[1 : len(p)-1]
	}
	p = strings.TrimPrefix(p, "file://")
	return strings.ReplaceAll(p, `\ `, " ")
}
