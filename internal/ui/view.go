package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/atomicstack/tabflip/internal/cycle"
	"github.com/atomicstack/tabflip/internal/tabs"
)

const (
	thumbCols = 22
	thumbRows = 6
	// cardOuterWidth is thumbCols plus horizontal padding and border.
	cardOuterWidth = thumbCols + 4
)

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.ReportFocus = true
	v.KeyboardEnhancements.ReportEventTypes = true
	return v
}

func (m *Model) render() string {
	if s := m.controller.Session(); s != nil {
		return m.renderSession(s)
	}
	return m.renderIdle()
}

func (m *Model) renderIdle() string {
	lines := make([]string, 0, 4)
	lines = append(lines, styles.Header.Render("tabflip"))
	switch {
	case m.controller.Pending():
		lines = append(lines, styles.Info.Render("loading recent tabs…"))
	default:
		b := m.controller.Bindings()
		lines = append(lines, styles.Info.Render(fmt.Sprintf("hold %s and press %c to cycle tabs", b.Modifier, b.Key)))
	}
	if m.errMsg != "" {
		lines = append(lines, styles.Error.Render(m.errMsg))
	}
	if m.infoMsg != "" {
		lines = append(lines, styles.Info.Render(m.infoMsg))
	}
	if m.verbose {
		lines = append(lines, styles.Footer.Render(fmt.Sprintf("state %s · generation %d", m.controller.State(), m.controller.Generation())))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSession(s *cycle.Session) string {
	header := fmt.Sprintf("recent tabs %d/%d", s.Selected+1, len(s.Candidates))
	if current, ok := s.Current(); ok {
		header += "  " + ansi.Truncate(current.Title, max(m.width-len(header)-2, 10), "…")
	}

	start, end := visibleRange(len(s.Candidates), s.Selected, m.cardsPerRow(len(s.Candidates)))
	cards := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		cards = append(cards, m.renderCard(s.Candidates[i], i == s.Selected))
	}

	parts := []string{
		styles.Header.Render(header),
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
	}
	if m.showFooter {
		parts = append(parts, styles.Footer.Render(m.help.View(m.keys)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) cardsPerRow(n int) int {
	if m.width <= 0 {
		return n
	}
	return max(1, m.width/cardOuterWidth)
}

// visibleRange returns the window of cards to draw so that selected is on
// screen.
func visibleRange(n, selected, perRow int) (int, int) {
	if perRow >= n {
		return 0, n
	}
	start := 0
	if selected >= perRow {
		start = selected - perRow + 1
	}
	return start, start + perRow
}

func (m *Model) renderCard(d tabs.Descriptor, selected bool) string {
	body, ok := m.thumbnail(d, thumbCols, thumbRows)
	if !ok {
		body = styles.Placeholder.
			Width(thumbCols).
			Height(thumbRows).
			Align(lipgloss.Center, lipgloss.Center).
			Render(d.Initial())
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		body,
		cardLine(styles.CardTitle.Render(ansi.Truncate(d.Title, thumbCols, "…"))),
		cardLine(styles.CardHost.Render(ansi.Truncate(d.Host(), thumbCols, "…"))),
		cardLine(styles.Badge.Render(previewBadge(d.Preview))),
	)
	style := styles.Card
	if selected {
		style = styles.SelectedCard
	}
	return style.Render(content)
}

func cardLine(s string) string {
	return lipgloss.NewStyle().Width(thumbCols).MaxWidth(thumbCols).Render(s)
}

func previewBadge(p *tabs.Preview) string {
	if p == nil {
		return "no preview"
	}
	badge := humanize.Bytes(uint64(len(p.Data)))
	if !p.CapturedAt.IsZero() {
		badge += " · " + humanize.Time(p.CapturedAt)
	}
	return badge
}
