package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/elioaoun07/homeagenda/internal/errors"
	"github.com/elioaoun07/homeagenda/internal/executor"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}

	switch m.state {
	case StateConfirmCancel:
		return m.updateConfirmCancel(msg)
	case StatePostpone:
		return m.updatePostpone(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Refresh):
		m.err = nil
		m.status = ""
		m.refresh()
	case key.Matches(keyMsg, m.keys.Complete):
		m.apply("completed", func(ctx context.Context, req executor.Request) (executor.Result, error) {
			return m.exec.Complete(ctx, req)
		})
	case key.Matches(keyMsg, m.keys.Reopen):
		m.apply("reopened", func(ctx context.Context, req executor.Request) (executor.Result, error) {
			return m.exec.Reopen(ctx, req)
		})
	case key.Matches(keyMsg, m.keys.Tomorrow):
		m.apply("postponed", func(ctx context.Context, req executor.Request) (executor.Result, error) {
			return m.exec.Postpone(ctx, executor.PostponeRequest{Request: req, Kind: models.PostponeTomorrow})
		})
	case key.Matches(keyMsg, m.keys.Cancel):
		if _, ok := m.selected(); ok {
			m.state = StateConfirmCancel
		}
	case key.Matches(keyMsg, m.keys.Postpone):
		if _, ok := m.selected(); ok {
			m.postpone = &PostponeFormModel{Kind: models.PostponeTomorrow}
			m.form = newPostponeForm(m.postpone, m.validateTarget)
			m.state = StatePostpone
			return m, m.form.Init()
		}
	}
	return m, nil
}

func (m Model) updateConfirmCancel(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		m.apply("cancelled", func(ctx context.Context, req executor.Request) (executor.Result, error) {
			return m.exec.Cancel(ctx, req)
		})
		m.state = StateAgenda
	case "n", "N", "esc":
		m.state = StateAgenda
	}
	return m, nil
}

func (m Model) updatePostpone(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateAgenda
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		fm := *m.postpone
		m.apply("postponed", func(ctx context.Context, req executor.Request) (executor.Result, error) {
			preq := executor.PostponeRequest{Request: req, Kind: fm.Kind}
			if fm.Kind == models.PostponeCustom {
				target, hasTime, err := utils.ParseInstant(fm.Target, m.loc)
				if err != nil {
					return executor.Result{}, err
				}
				preq.Target = target
				preq.TargetHasTime = hasTime
			}
			return m.exec.Postpone(ctx, preq)
		})
		m.state = StateAgenda
		return m, nil
	case huh.StateAborted:
		m.state = StateAgenda
		return m, nil
	}
	return m, cmd
}

func (m Model) validateTarget(s string) error {
	if _, _, err := utils.ParseInstant(s, m.loc); err != nil {
		return err
	}
	return nil
}

// apply runs one executor call against the selected row and refreshes the agenda.
func (m *Model) apply(verb string, run func(context.Context, executor.Request) (executor.Result, error)) {
	r, ok := m.selected()
	if !ok {
		return
	}
	res, err := run(context.Background(), m.request(r))
	if err != nil {
		m.err = err
		m.status = ""
		return
	}
	m.err = nil
	switch {
	case res.Deduplicated:
		m.status = fmt.Sprintf("%s was already %s", res.Item.Title, verb)
	case res.Action != nil && res.Action.PostponedTo != nil:
		m.status = fmt.Sprintf("%s %s to %s", res.Item.Title, verb, res.Action.PostponedTo.In(m.loc).Format("Mon Jan 02 15:04"))
	default:
		m.status = fmt.Sprintf("%s %s", res.Item.Title, verb)
	}
	if res.Notified {
		m.status += fmt.Sprintf(" (notified %s)", res.Item.ResponsibleUserID)
	}
	m.refresh()
}

func (m Model) errorText() string {
	if m.err == nil {
		return ""
	}
	return errors.Format(m.err)
}
