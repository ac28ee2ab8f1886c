package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/ui/theme"
)

// ProgressBar renders a labelled horizontal bar. A nil Percent draws an
// empty bar marked "-".
type ProgressBar struct {
	Label   string
	Percent *int
	Color   string
	Width   int
}

func (p ProgressBar) View() string {
	label := lipgloss.NewStyle().Foreground(theme.Text).Width(20).Render(p.Label)
	value := "   -"
	pct := 0
	if p.Percent != nil {
		pct = min(max(*p.Percent, 0), 100)
		value = fmt.Sprintf("%3d%%", pct)
	}

	barWidth := p.Width - lipgloss.Width(label) - 6
	if barWidth < 4 {
		barWidth = 4
	}
	filled := barWidth * pct / 100

	filledStr := lipgloss.NewStyle().
		Background(lipgloss.Color(p.Color)).
		Render(strings.Repeat(" ", filled))
	emptyStr := theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	return label + filledStr + emptyStr + "  " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(value)
}
