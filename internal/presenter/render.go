package presenter

import (
	"fmt"
	"time"

	"github.com/cozy-creator/greenlens/internal/taxonomy"
)

// Renderer is the set of drawing primitives a report is made of.
type Renderer interface {
	Heading(level int, text string)
	Text(text string)
	StyledBox(style taxonomy.Style, lines ...string)
	ProgressBar(label string, score float64, style taxonomy.Style)
	// Columns lays out n columns side by side; fill draws column i into the
	// renderer it is given.
	Columns(n int, fill func(i int, col Renderer))
}

// Render draws a report.
func Render(r Renderer, rep *Report) {
	r.StyledBox(rep.Style,
		fmt.Sprintf("%s Prediction: %s", rep.Style.Icon, rep.Prediction),
		fmt.Sprintf("Confidence: %s", Percent(rep.Confidence)),
	)

	r.Heading(3, "Category scores")
	for _, b := range rep.Bars {
		r.ProgressBar(b.Label, b.Score, b.Style)
	}

	r.Heading(3, "Detailed analysis")
	r.Columns(len(rep.Buckets), func(i int, col Renderer) {
		b := rep.Buckets[i]
		col.Heading(4, fmt.Sprintf("%s %s", b.Style.Icon, b.Title))
		if len(b.Entries) == 0 {
			col.Text("None detected")
			return
		}
		for _, e := range b.Entries {
			col.Text(fmt.Sprintf("• %s: %s", e.Label, Percent(e.Score)))
		}
	})

	r.Text(fmt.Sprintf("Analyzed by %s on %s in %s", rep.Model, rep.Device, rep.Elapsed.Round(time.Millisecond)))
}

var (
	warningStyle = taxonomy.Style{
		Name:       "notice-warning",
		Icon:       "⚠️",
		Background: "#fff3cd",
		Border:     "#ffeaa7",
		Text:       "#856404",
		Accent:     "#ffc107",
	}
	errorStyle = taxonomy.Style{
		Name:       "notice-error",
		Icon:       "❌",
		Background: "#f8d7da",
		Border:     "#f5c6cb",
		Text:       "#721c24",
		Accent:     "#dc3545",
	}
)

// Warn draws a non-fatal notice, such as an empty claim.
func Warn(r Renderer, msg string) {
	r.StyledBox(warningStyle, warningStyle.Icon+" "+msg)
}

// Fail draws an error notice.
func Fail(r Renderer, msg string) {
	r.StyledBox(errorStyle, errorStyle.Icon+" "+msg)
}
