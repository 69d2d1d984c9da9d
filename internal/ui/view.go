package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	helpStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#626262"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

const minPanelInnerWidth = 36

// View renders the migration and download panels side by side.
func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	// Each panel spends two cells on borders and two on padding.
	innerWidth := width/2 - 4
	if innerWidth < minPanelInnerWidth {
		innerWidth = minPanelInnerWidth
	}

	left := panelStyle.Width(innerWidth + 2).Render(m.renderMigration(innerWidth))
	right := panelStyle.Width(innerWidth + 2).Render(m.renderDownloads(innerWidth))

	footer := helpStyle.Render("ctrl+c to cancel")
	if m.interrupted {
		footer = warnStyle.Render("canceling, waiting for started playlists to wind down")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" + footer + "\n"
}

func (m *Model) renderMigration(width int) string {
	lines := make([]string, 0, len(m.mig.workers)*2+activityLogSize+6)

	lines = append(lines,
		titleStyle.Render("Migration"),
		cell(fmt.Sprintf("Playlists: %d/%d (%d workers)",
			m.mig.playlistsDone, m.mig.playlistsTotal, len(m.mig.workers)), width))

	for i := range m.mig.workers {
		row := &m.mig.workers[i]
		if !row.active {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("%d: idle", i+1)), "")
			continue
		}

		counter := fmt.Sprintf("%d/%d", row.current, row.total)
		lines = append(lines,
			fmt.Sprintf("%s %s %s",
				m.bar.ViewAs(rowProgress(row)),
				counter,
				cell(row.playlist, width-progressBarWidth-len(counter)-2)),
			"  "+cell(row.track, width-2))
	}

	lines = append(lines,
		cell(fmt.Sprintf("pending %d  added %d  skipped %d  not found %d  failed %d",
			m.mig.pending(), m.mig.added, m.mig.skipped, m.mig.notFound, m.mig.failed), width),
		cell("ETA "+formatETA(m.mig.eta()), width))

	appendActivity(&lines, m.mig.log, width)

	return strings.Join(lines, "\n")
}

func (m *Model) renderDownloads(width int) string {
	lines := make([]string, 0, len(m.dl.active)+activityLogSize+5)

	lines = append(lines,
		titleStyle.Render("Downloads"),
		cell(fmt.Sprintf("Queue: %d pending (ETA %s)", m.dl.pending(), formatETA(m.dl.eta())), width))

	actives := make([]string, 0, len(m.dl.active))
	for _, entry := range m.dl.active {
		actives = append(actives, fmt.Sprintf("%s (%d tracks)", entry.name, entry.trackCount))
	}

	sort.Strings(actives)

	for _, active := range actives {
		lines = append(lines, cell("downloading "+active, width))
	}

	lines = append(lines,
		cell(fmt.Sprintf("completed %d  failed %d", m.dl.completed, m.dl.failed), width))

	appendActivity(&lines, m.dl.log, width)

	return strings.Join(lines, "\n")
}

func appendActivity(lines *[]string, log *activityLog, width int) {
	if len(log.entries) == 0 {
		return
	}

	*lines = append(*lines, "", dimStyle.Render("Recent"))

	for _, entry := range log.entries {
		*lines = append(*lines, styleLogEntry(entry, width))
	}
}

// styleLogEntry colors an activity line by its outcome prefix.
func styleLogEntry(entry string, width int) string {
	rendered := cell(entry, width)

	switch {
	case strings.HasPrefix(entry, "done "), strings.HasPrefix(entry, "ok "):
		return okStyle.Render(rendered)
	case strings.HasPrefix(entry, "FAILED "), strings.HasPrefix(entry, "failed"):
		return errorStyle.Render(rendered)
	case strings.HasPrefix(entry, "not found"):
		return warnStyle.Render(rendered)
	default:
		return rendered
	}
}

func rowProgress(row *workerRow) float64 {
	if row.total <= 0 {
		return 0
	}

	p := float64(row.current) / float64(row.total)
	if p > 1 {
		return 1
	}

	return p
}
