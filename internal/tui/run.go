package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tiliavir/daymark/internal/session"
)

// Run shows the table UI until the user quits.
func Run(ctx context.Context, sess *session.Session, notices <-chan session.Notice) error {
	p := tea.NewProgram(New(ctx, sess, notices), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
