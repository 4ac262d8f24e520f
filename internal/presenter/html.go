package presenter

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/cozy-creator/greenlens/internal/taxonomy"
)

// HTMLRenderer draws into an escaped HTML fragment that the page template
// embeds as is.
type HTMLRenderer struct {
	sb strings.Builder
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

func (h *HTMLRenderer) HTML() template.HTML {
	return template.HTML(h.sb.String())
}

func (h *HTMLRenderer) Heading(level int, text string) {
	level = min(max(level, 1), 6)
	fmt.Fprintf(&h.sb, "<h%d>%s</h%d>\n", level, template.HTMLEscapeString(text), level)
}

func (h *HTMLRenderer) Text(text string) {
	fmt.Fprintf(&h.sb, "<p>%s</p>\n", template.HTMLEscapeString(text))
}

func (h *HTMLRenderer) StyledBox(style taxonomy.Style, lines ...string) {
	fmt.Fprintf(&h.sb, "<div class=\"result-box %s\">\n", template.HTMLEscapeString(style.Name))
	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(&h.sb, "<h3>%s</h3>\n", template.HTMLEscapeString(line))
			continue
		}
		fmt.Fprintf(&h.sb, "<p>%s</p>\n", template.HTMLEscapeString(line))
	}
	h.sb.WriteString("</div>\n")
}

func (h *HTMLRenderer) ProgressBar(label string, score float64, style taxonomy.Style) {
	pct := min(max(score, 0), 1) * 100
	fmt.Fprintf(&h.sb,
		"<div class=\"score\"><div class=\"score-label\"><span>%s</span><span>%s</span></div>"+
			"<div class=\"progress\"><div class=\"progress-fill %s\" style=\"width: %.2f%%\"></div></div></div>\n",
		template.HTMLEscapeString(label),
		template.HTMLEscapeString(Percent(score)),
		template.HTMLEscapeString(style.Name),
		pct,
	)
}

func (h *HTMLRenderer) Columns(n int, fill func(i int, col Renderer)) {
	fmt.Fprintf(&h.sb, "<div class=\"columns\" style=\"--columns: %d\">\n", n)
	for i := 0; i < n; i++ {
		col := NewHTMLRenderer()
		fill(i, col)
		fmt.Fprintf(&h.sb, "<div class=\"column\">\n%s</div>\n", col.sb.String())
	}
	h.sb.WriteString("</div>\n")
}

// Stylesheet emits the CSS rules for every category style and notice style,
// so the page colors always match the style tables.
func Stylesheet() string {
	styles := taxonomy.Styles()
	styles[warningStyle.Name] = warningStyle
	styles[errorStyle.Name] = errorStyle

	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		s := styles[name]
		fmt.Fprintf(&sb, ".result-box.%s { background-color: %s; border: 1px solid %s; color: %s; }\n",
			name, s.Background, s.Border, s.Text)
		fmt.Fprintf(&sb, ".progress-fill.%s { background-color: %s; }\n", name, s.Accent)
	}

	return sb.String()
}
