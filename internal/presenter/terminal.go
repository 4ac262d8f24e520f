package presenter

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cozy-creator/greenlens/internal/taxonomy"
)

const (
	defaultTerminalWidth = 80
	barWidth             = 30
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)
	mutedColor   = lipgloss.Color("#6c757d")
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// TerminalRenderer draws with lipgloss for the command line.
type TerminalRenderer struct {
	width  int
	blocks []string
}

func NewTerminalRenderer(width int) *TerminalRenderer {
	if width <= 0 {
		width = defaultTerminalWidth
	}
	return &TerminalRenderer{width: width}
}

func (t *TerminalRenderer) String() string {
	return lipgloss.JoinVertical(lipgloss.Left, t.blocks...)
}

func (t *TerminalRenderer) Heading(level int, text string) {
	style := headingStyle
	if level > 3 {
		style = style.MarginTop(0).Underline(true)
	}
	t.blocks = append(t.blocks, style.Render(text))
}

func (t *TerminalRenderer) Text(text string) {
	t.blocks = append(t.blocks, lipgloss.NewStyle().Width(t.width).Render(text))
}

func (t *TerminalRenderer) StyledBox(style taxonomy.Style, lines ...string) {
	accent := lipgloss.Color(style.Accent)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(t.width - 2)

	content := make([]string, len(lines))
	for i, line := range lines {
		if i == 0 {
			content[i] = lipgloss.NewStyle().Bold(true).Foreground(accent).Render(line)
			continue
		}
		content[i] = line
	}

	t.blocks = append(t.blocks, box.Render(strings.Join(content, "\n")))
}

func (t *TerminalRenderer) ProgressBar(label string, score float64, style taxonomy.Style) {
	filled := int(math.Round(min(max(score, 0), 1) * barWidth))

	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(style.Accent)).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", barWidth-filled))

	labelWidth := max(t.width-barWidth-10, 10)
	name := lipgloss.NewStyle().Width(labelWidth).MaxWidth(labelWidth).Render(label)

	t.blocks = append(t.blocks, lipgloss.JoinHorizontal(lipgloss.Top, name, bar, " ", Percent(score)))
}

func (t *TerminalRenderer) Columns(n int, fill func(i int, col Renderer)) {
	if n <= 0 {
		return
	}

	colWidth := max(t.width/n-1, 10)
	cols := make([]string, n)
	for i := 0; i < n; i++ {
		col := NewTerminalRenderer(colWidth)
		fill(i, col)
		cols[i] = lipgloss.NewStyle().Width(colWidth).MarginRight(1).Render(col.String())
	}

	t.blocks = append(t.blocks, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
}
