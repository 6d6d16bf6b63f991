// Package tui is the interactive agenda: it lists the agenda buckets and applies
// complete, cancel, postpone and reopen to the selected occurrence.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/elioaoun07/homeagenda/internal/agenda"
	"github.com/elioaoun07/homeagenda/internal/executor"
	"github.com/elioaoun07/homeagenda/internal/ledger"
	"github.com/elioaoun07/homeagenda/internal/models"
	"github.com/elioaoun07/homeagenda/internal/storage"
)

type SessionState int

const (
	StateAgenda SessionState = iota
	StateConfirmCancel
	StatePostpone
)

type Options struct {
	Store    storage.Provider
	Executor *executor.Executor
	Location *time.Location
	Actor    string
	Now      func() time.Time
}

type PostponeFormModel struct {
	Kind   models.PostponeKind
	Target string
}

type Model struct {
	store    storage.Provider
	exec     *executor.Executor
	loc      *time.Location
	actor    string
	now      func() time.Time
	state    SessionState
	keys     KeyMap
	help     help.Model
	agenda   agenda.Agenda
	index    *ledger.Index
	rows     []Row
	cursor   int
	form     *huh.Form
	postpone *PostponeFormModel
	status   string
	err      error
	quitting bool
	width    int
	height   int
}

func NewModel(opts Options) Model {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := Model{
		store: opts.Store,
		exec:  opts.Executor,
		loc:   loc,
		actor: opts.Actor,
		now:   now,
		state: StateAgenda,
		keys:  DefaultKeyMap(),
		help:  help.New(),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) ShortHelp() []key.Binding {
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

// refresh rebuilds the agenda from storage, keeping the cursor in range.
func (m *Model) refresh() {
	bg := context.Background()
	items, err := m.store.ListItems(bg, models.ItemFilter{})
	if err != nil {
		m.err = fmt.Errorf("failed to list items: %w", err)
		return
	}
	actions, err := m.store.ListAllActions(bg)
	if err != nil {
		m.err = fmt.Errorf("failed to list occurrence actions: %w", err)
		return
	}

	m.index = ledger.NewIndex(actions)
	m.agenda = agenda.Build(items, actions, m.now(), agenda.Options{Location: m.loc})
	m.rows = Rows(m.agenda)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[m.cursor], true
}

// request addresses the selected occurrence, carrying the ledger state seen at refresh.
func (m Model) request(r Row) executor.Request {
	req := executor.Request{ItemID: r.Entry.Item.ID, ActorID: m.actor}
	if r.Entry.At == nil {
		return req
	}
	if r.Entry.Item.IsRecurring() {
		req.OccurrenceAt = *r.Entry.At
		if latest, ok := m.index.Latest(r.Entry.Item.ID, *r.Entry.At); ok {
			observed := latest.CreatedAt
			req.ObservedAt = &observed
		}
	}
	return req
}

func newPostponeForm(fm *PostponeFormModel, validate func(string) error) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.PostponeKind]().
				Title("Postpone to").
				Options(
					huh.NewOption("Tomorrow, same time", models.PostponeTomorrow),
					huh.NewOption("Skip to next occurrence", models.PostponeNextOccurrence),
					huh.NewOption("Pick a date", models.PostponeCustom),
				).
				Value(&fm.Kind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Date (YYYY-MM-DD or 'YYYY-MM-DD HH:MM')").
				Value(&fm.Target).
				Validate(validate),
		).WithHideFunc(func() bool { return fm.Kind != models.PostponeCustom }),
	)
}
