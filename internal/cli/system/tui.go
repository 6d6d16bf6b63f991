package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elioaoun07/homeagenda/internal/cli"
	"github.com/elioaoun07/homeagenda/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	exec, loc, err := ctx.NewExecutor(context.Background())
	if err != nil {
		return err
	}

	m := tui.NewModel(tui.Options{
		Store:    ctx.Store,
		Executor: exec,
		Location: loc,
		Actor:    ctx.Actor,
		Now:      ctx.Now,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive agenda failed: %w", err)
	}
	return nil
}
