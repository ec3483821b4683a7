package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spandan3/smart-waste-classifier/internal/dashboard"
)

// Run starts the terminal dashboard and blocks until the user quits.
func Run(ctx context.Context, controller *dashboard.Controller, logger *zap.Logger) error {
	m := NewModel(ctx, controller, logger)

	// Alt screen keeps the dashboard isolated; bracketed paste is on by
	// default, which is how dropped files arrive.
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
