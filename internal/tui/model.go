package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spandan3/smart-waste-classifier/internal/dashboard"
)

const (
	defaultThumbnailWidth = 32
	notImageNotice        = "Only image files can be dropped here."
)

// Model is the terminal dashboard. It renders the controller's snapshot and
// turns key presses into controller operations.
type Model struct {
	ctx        context.Context
	controller *dashboard.Controller
	logger     *zap.Logger

	input    textinput.Model
	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     KeyMap

	snapshot dashboard.Snapshot
	// pending covers the gap between issuing the classify command and the
	// controller flagging the request as in flight.
	pending   bool
	thumbnail string
	thumbRef  string
	notice    string
	width     int
	err       error
}

// NewModel builds the dashboard model around controller.
func NewModel(ctx context.Context, controller *dashboard.Controller, logger *zap.Logger) Model {
	input := textinput.New()
	input.Placeholder = "Type an image path, or drop a file onto the terminal"
	input.Prompt = "› "
	input.CharLimit = 4096
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle

	return Model{
		ctx:        ctx,
		controller: controller,
		logger:     logger.Named("tui"),
		input:      input,
		spinner:    sp,
		progress:   progress.New(progress.WithSolidFill(string(primaryColor)), progress.WithoutPercentage()),
		help:       help.New(),
		keys:       DefaultKeyMap(),
		snapshot:   controller.Snapshot(),
		width:      80,
	}
}

// Init starts the text input cursor.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) busy() bool {
	return m.pending || m.snapshot.Classifying
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = clamp(msg.Width-12, 10, 60)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case selectedMsg:
		m.snapshot = m.controller.Snapshot()
		if msg.err != nil {
			if errors.Is(msg.err, dashboard.ErrNotImage) {
				m.notice = notImageNotice
			} else {
				m.notice = msg.err.Error()
			}
			return m, nil
		}
		m.notice = ""
		m.input.Reset()
		m.input.Blur()
		m.thumbnail = ""
		m.thumbRef = string(m.snapshot.PreviewRef)
		return m, thumbnailCmd(m.ctx, m.controller, m.thumbRef, defaultThumbnailWidth)

	case classifiedMsg:
		m.pending = false
		m.snapshot = m.controller.Snapshot()
		if msg.err != nil && !errors.Is(msg.err, dashboard.ErrClassifyInFlight) {
			m.logger.Debug("classification ended with error", zap.Error(msg.err))
		}
		return m, nil

	case thumbnailMsg:
		if msg.ref != m.thumbRef {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Debug("thumbnail unavailable", zap.Error(msg.err))
			m.thumbnail = mutedStyle.Render("(preview unavailable)")
			return m, nil
		}
		m.thumbnail = msg.view
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A file dropped on the terminal arrives as a bracketed paste of its path.
	if msg.Paste {
		path := pastedPath(string(msg.Runes))
		if path == "" {
			return m, nil
		}
		return m, selectFileCmd(m.ctx, m.controller, path, dashboard.SourceDrop)
	}

	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Choose):
			path := pastedPath(m.input.Value())
			if path == "" {
				return m, nil
			}
			return m, selectFileCmd(m.ctx, m.controller, path, dashboard.SourcePicker)
		case key.Matches(msg, m.keys.Cancel):
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Open):
		m.notice = ""
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Classify):
		if !m.snapshot.HasFile() || m.busy() {
			return m, nil
		}
		m.pending = true
		return m, tea.Batch(classifyCmd(m.ctx, m.controller), m.spinner.Tick)
	case key.Matches(msg, m.keys.Reset):
		m.controller.Reset(m.ctx)
		m.snapshot = m.controller.Snapshot()
		m.thumbnail = ""
		m.thumbRef = ""
		m.notice = ""
		return m, m.input.Focus()
	}
	return m, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
