package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/elioaoun07/homeagenda/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateConfirmCancel:
		content = m.viewConfirmCancel()
	case StatePostpone:
		content = m.form.View()
	default:
		content = docStyle.Render(RenderAgenda(m.agenda, m.loc, m.cursor))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	title := titleStyle.Render("homeagenda")
	date := mutedStyle.Render(m.agenda.GeneratedAt.In(m.loc).Format("Monday, " + constants.DateFormat))
	var faults string
	if n := len(m.agenda.Faults); n > 0 {
		faults = warningStyle.Render(fmt.Sprintf("⚠ %d item(s) with invalid rules", n))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", date, "  ", faults)
}

func (m Model) viewStatus() string {
	if text := m.errorText(); text != "" {
		return dangerStyle.Render(text)
	}
	if m.status != "" {
		return successStyle.Render("✓ " + m.status)
	}
	return ""
}

func (m Model) viewConfirmCancel() string {
	r, _ := m.selected()
	when := ""
	if r.Entry.At != nil {
		when = " on " + r.Entry.At.In(m.loc).Format(constants.DateTimeFormat)
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Cancel %q%s?", r.Entry.Item.Title, when)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
