package presenter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cozy-creator/greenlens/internal/classifier"
	"github.com/cozy-creator/greenlens/internal/inference"
	"github.com/cozy-creator/greenlens/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analysis(coarse, fine inference.Result) *classifier.Analysis {
	return &classifier.Analysis{
		ID:     "test",
		Text:   "Our product is eco-friendly and good for the environment.",
		Model:  "facebook/bart-large-mnli",
		Device: inference.DeviceCPU,
		Coarse: coarse,
		Fine:   fine,
	}
}

func TestPresentPrediction(t *testing.T) {
	rep, err := Present(analysis(
		inference.Result{{Label: "Greenwashing", Score: 0.7123}, {Label: "Marketing Hype", Score: 0.2}, {Label: "Genuine Sustainability", Score: 0.0877}},
		nil,
	))
	require.NoError(t, err)

	assert.Equal(t, "Greenwashing", rep.Prediction)
	assert.InDelta(t, 0.7123, rep.Confidence, 1e-9)
	assert.Equal(t, "greenwashing", rep.Style.Name)

	require.Len(t, rep.Bars, 3)
	assert.Equal(t, "Marketing Hype", rep.Bars[1].Label)
	assert.InDelta(t, 0.2, rep.Bars[1].Score, 1e-9, "bars keep raw scores")
	assert.Equal(t, "marketing-hype", rep.Bars[1].Style.Name)
}

func TestPresentUnknownPrediction(t *testing.T) {
	rep, err := Present(analysis(inference.Result{{Label: "Certification-Based Claim", Score: 0.9}}, nil))
	require.NoError(t, err)
	assert.Equal(t, taxonomy.UnknownStyle(), rep.Style)
	assert.Equal(t, "Certification-Based Claim", rep.Prediction)
}

func TestPresentTieKeepsModelOrder(t *testing.T) {
	rep, err := Present(analysis(inference.Result{{Label: "Marketing Hype", Score: 0.5}, {Label: "Greenwashing", Score: 0.5}}, nil))
	require.NoError(t, err)
	assert.Equal(t, "Marketing Hype", rep.Prediction)
}

func TestPresentEmptyAnalysis(t *testing.T) {
	_, err := Present(analysis(nil, nil))
	assert.Error(t, err)
}

func TestPresentBuckets(t *testing.T) {
	fine := inference.Result{
		{Label: "Vague sustainability statement", Score: 0.9},
		{Label: "Misleading environmental claim", Score: 0.8},
		{Label: "Not in any bucket", Score: 0.75},
		{Label: "Health benefit framing", Score: 0.7},
		{Label: "Unsubstantiated green marketing", Score: 0.6},
		{Label: "Hidden environmental trade-off", Score: 0.5},
		{Label: "Verified sustainable practice", Score: 0.1},
	}

	rep, err := Present(analysis(inference.Result{{Label: "Greenwashing", Score: 1}}, fine))
	require.NoError(t, err)

	require.Len(t, rep.Buckets, len(taxonomy.Categories()))
	byCategory := map[taxonomy.Category]Bucket{}
	for _, b := range rep.Buckets {
		byCategory[b.Category] = b
	}

	assert.Equal(t, []Entry{
		{Label: "Vague sustainability statement", Score: 0.9},
		{Label: "Misleading environmental claim", Score: 0.8},
		{Label: "Unsubstantiated green marketing", Score: 0.6},
	}, byCategory[taxonomy.Greenwashing].Entries, "top 3 in received order")

	assert.Equal(t, []Entry{{Label: "Verified sustainable practice", Score: 0.1}}, byCategory[taxonomy.GenuineSustainability].Entries)
	assert.Equal(t, []Entry{{Label: "Health benefit framing", Score: 0.7}}, byCategory[taxonomy.MarketingHype].Entries)
	assert.Equal(t, []string{"Not in any bucket"}, rep.Unmapped)

	// every shown label appears in exactly one bucket
	seen := map[string]int{}
	for _, b := range rep.Buckets {
		for _, e := range b.Entries {
			seen[e.Label]++
		}
	}
	for label, n := range seen {
		assert.Equal(t, 1, n, label)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "87.12%", Percent(0.87123))
	assert.Equal(t, "0.00%", Percent(0))
	assert.Equal(t, "100.00%", Percent(1))
}

// recorder captures primitive calls as strings.
type recorder struct {
	ops []string
}

func (r *recorder) Heading(level int, text string) {
	r.ops = append(r.ops, fmt.Sprintf("h%d %s", level, text))
}
func (r *recorder) Text(text string) { r.ops = append(r.ops, "text "+text) }
func (r *recorder) StyledBox(style taxonomy.Style, lines ...string) {
	r.ops = append(r.ops, fmt.Sprintf("box[%s] %s", style.Name, strings.Join(lines, " | ")))
}
func (r *recorder) ProgressBar(label string, score float64, style taxonomy.Style) {
	r.ops = append(r.ops, fmt.Sprintf("bar[%s] %s %s", style.Name, label, Percent(score)))
}
func (r *recorder) Columns(n int, fill func(int, Renderer)) {
	r.ops = append(r.ops, fmt.Sprintf("columns %d", n))
	for i := 0; i < n; i++ {
		col := &recorder{}
		fill(i, col)
		for _, op := range col.ops {
			r.ops = append(r.ops, fmt.Sprintf("  [%d] %s", i, op))
		}
	}
}

func TestRender(t *testing.T) {
	rep, err := Present(analysis(
		inference.Result{{Label: "Greenwashing", Score: 0.8712}, {Label: "Genuine Sustainability", Score: 0.1}, {Label: "Marketing Hype", Score: 0.0288}},
		inference.Result{{Label: "Vague sustainability statement", Score: 0.6}, {Label: "Certification-backed claim", Score: 0.3}},
	))
	require.NoError(t, err)

	r := &recorder{}
	Render(r, rep)

	assert.Equal(t, []string{
		"box[greenwashing] ⚠️ Prediction: Greenwashing | Confidence: 87.12%",
		"h3 Category scores",
		"bar[greenwashing] Greenwashing 87.12%",
		"bar[genuine] Genuine Sustainability 10.00%",
		"bar[marketing-hype] Marketing Hype 2.88%",
		"h3 Detailed analysis",
		"columns 3",
		"  [0] h4 ⚠️ Potential issues",
		"  [0] text • Vague sustainability statement: 60.00%",
		"  [1] h4 ✅ Positive indicators",
		"  [1] text • Certification-backed claim: 30.00%",
		"  [2] h4 📢 Hype signals",
		"  [2] text None detected",
		"text Analyzed by facebook/bart-large-mnli on cpu in 0s",
	}, r.ops)
}

func TestHTMLRendererEscapes(t *testing.T) {
	h := NewHTMLRenderer()
	h.Text("<script>alert(1)</script>")
	h.ProgressBar("A & B", 0.5, taxonomy.Greenwashing.Style())

	out := string(h.HTML())
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "A &amp; B")
	assert.Contains(t, out, "width: 50.00%")
	assert.Contains(t, out, "progress-fill greenwashing")
}

func TestHTMLRenderReport(t *testing.T) {
	rep, err := Present(analysis(inference.Result{{Label: "Genuine Sustainability", Score: 0.9}}, nil))
	require.NoError(t, err)

	h := NewHTMLRenderer()
	Render(h, rep)
	out := string(h.HTML())

	assert.Contains(t, out, `<div class="result-box genuine">`)
	assert.Contains(t, out, "Prediction: Genuine Sustainability")
	assert.Contains(t, out, `--columns: 3`)
	assert.Equal(t, strings.Count(out, `<div class="column">`), 3)
}

func TestTerminalRenderer(t *testing.T) {
	rep, err := Present(analysis(
		inference.Result{{Label: "Marketing Hype", Score: 0.6}, {Label: "Greenwashing", Score: 0.4}},
		inference.Result{{Label: "Buzzword-heavy promotion", Score: 0.5}},
	))
	require.NoError(t, err)

	term := NewTerminalRenderer(120)
	Render(term, rep)
	out := term.String()

	assert.Contains(t, out, "Prediction: Marketing Hype")
	assert.Contains(t, out, "60.00%")
	assert.Contains(t, out, "Buzzword-heavy promotion")
	assert.Contains(t, out, "None detected")
}

func TestStylesheetCoversEveryStyle(t *testing.T) {
	css := Stylesheet()
	for name := range taxonomy.Styles() {
		assert.Contains(t, css, ".result-box."+name+" ")
		assert.Contains(t, css, ".progress-fill."+name+" ")
	}
	assert.Contains(t, css, ".result-box.notice-warning")
}

func TestNotices(t *testing.T) {
	r := &recorder{}
	Warn(r, "Please enter a claim to analyze.")
	Fail(r, "Model not loaded.")
	assert.Equal(t, []string{
		"box[notice-warning] ⚠️ Please enter a claim to analyze.",
		"box[notice-error] ❌ Model not loaded.",
	}, r.ops)
}
