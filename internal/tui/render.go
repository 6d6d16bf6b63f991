package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/elioaoun07/homeagenda/internal/agenda"
	"github.com/elioaoun07/homeagenda/internal/occurrence"
)

// Row is one selectable agenda line.
type Row struct {
	Bucket agenda.Bucket
	Entry  agenda.Entry
}

// Rows flattens the agenda in display order.
func Rows(a agenda.Agenda) []Row {
	var rows []Row
	add := func(b agenda.Bucket, entries []agenda.Entry) {
		for _, e := range entries {
			rows = append(rows, Row{Bucket: b, Entry: e})
		}
	}
	add(agenda.BucketOverdue, a.Overdue)
	add(agenda.BucketToday, a.Today)
	add(agenda.BucketTomorrow, a.Tomorrow)
	for _, g := range a.Upcoming {
		add(agenda.BucketUpcoming, g.Entries)
	}
	add(agenda.BucketCompleted, a.Completed)
	return rows
}

// RenderAgenda draws the agenda. The row at index selected is highlighted; pass -1
// for none.
func RenderAgenda(a agenda.Agenda, loc *time.Location, selected int) string {
	var b strings.Builder
	idx := 0

	section := func(title string, entries []agenda.Entry, layout string, overdue bool) {
		if len(entries) == 0 {
			return
		}
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, e := range entries {
			b.WriteString(renderEntry(e, loc, layout, overdue, idx == selected))
			b.WriteString("\n")
			idx++
		}
	}

	section("Overdue", a.Overdue, "Mon Jan 02 15:04", true)
	section("Today", a.Today, "15:04", false)
	section("Tomorrow", a.Tomorrow, "15:04", false)
	for _, g := range a.Upcoming {
		section(g.Date.In(loc).Format("Monday, Jan 2"), g.Entries, "15:04", false)
	}
	section("Completed this week", a.Completed, "Mon Jan 02 15:04", false)

	if a.Len() == 0 {
		b.WriteString(mutedStyle.Render("Nothing on the agenda."))
		b.WriteString("\n")
	}
	if a.Archived > 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d completed occurrence(s) from earlier weeks archived", a.Archived)))
		b.WriteString("\n")
	}
	return strings.TrimLeft(b.String(), "\n")
}

func renderEntry(e agenda.Entry, loc *time.Location, layout string, overdue, selected bool) string {
	when := "--:--"
	if e.At != nil {
		when = e.At.In(loc).Format(layout)
	}

	mark := "[ ]"
	switch e.Status {
	case occurrence.StatusCompleted:
		mark = "[✓]"
	case occurrence.StatusCancelled:
		mark = "[✗]"
	}

	who := ""
	if e.Item.ResponsibleUserID != "" {
		who = " @" + e.Item.ResponsibleUserID
	}
	line := fmt.Sprintf("%s %s  %s%s", mark, when, e.Item.Title, who)

	switch {
	case selected:
		line = selectedStyle.Render(line)
	case e.Status.Done():
		line = doneStyle.Render(line)
	case overdue:
		line = overdueStyle.Render(line)
	}
	if e.Fault != nil {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, "  ", warningStyle.Render("⚠ "+e.Fault.Error()))
	}
	return "  " + line
}
