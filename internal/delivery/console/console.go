package console

import (
	"context"

	"github.com/NasaVasa/eventdash/internal/usecase"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Run drives the terminal UI until the operator quits or ctx is cancelled.
func Run(ctx context.Context, ws *usecase.Workspace, exportDir string, logger *zap.Logger) error {
	p := tea.NewProgram(NewModel(ctx, ws, exportDir, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run console")
	}
	return nil
}
