// Package presenter turns an analysis into something a person can read: the
// prediction box, one bar per category and the indicator buckets. It decides
// what is shown; a Renderer decides how.
package presenter

import (
	"fmt"
	"time"

	"github.com/cozy-creator/greenlens/internal/classifier"
	"github.com/cozy-creator/greenlens/internal/inference"
	"github.com/cozy-creator/greenlens/internal/taxonomy"
)

// TopIndicators is the number of entries kept per bucket.
const TopIndicators = 3

type Bar struct {
	Label string
	Score float64
	Style taxonomy.Style
}

type Entry struct {
	Label string
	Score float64
}

type Bucket struct {
	Category taxonomy.Category
	Title    string
	Style    taxonomy.Style
	Entries  []Entry
}

// Report is the view model of one analysis.
type Report struct {
	Text       string
	Prediction string
	Confidence float64
	Style      taxonomy.Style
	Bars       []Bar
	Buckets    []Bucket

	// Unmapped lists fine-grained labels that belong to no bucket. They are
	// not shown.
	Unmapped []string

	Model      string
	Device     inference.Device
	MultiLabel bool
	Elapsed    time.Duration
}

// Present builds the report for an analysis. The prediction is the first
// coarse entry; its style comes from an exact label lookup and falls back to
// the unknown style. Every coarse label gets its own bar with its raw score.
// Each bucket keeps the first TopIndicators entries in the order received.
func Present(a *classifier.Analysis) (*Report, error) {
	top, ok := a.Coarse.Top()
	if !ok {
		return nil, fmt.Errorf("analysis %s has no coarse scores", a.ID)
	}

	r := &Report{
		Text:       a.Text,
		Prediction: top.Label,
		Confidence: top.Score,
		Style:      taxonomy.StyleFor(top.Label),
		Model:      a.Model,
		Device:     a.Device,
		MultiLabel: a.MultiLabel,
		Elapsed:    a.Elapsed,
	}

	r.Bars = make([]Bar, len(a.Coarse))
	for i, s := range a.Coarse {
		r.Bars[i] = Bar{Label: s.Label, Score: s.Score, Style: taxonomy.StyleFor(s.Label)}
	}

	buckets := make(map[taxonomy.Category][]Entry)
	for _, s := range a.Fine {
		c, ok := taxonomy.BucketOf(s.Label)
		if !ok {
			r.Unmapped = append(r.Unmapped, s.Label)
			continue
		}
		if len(buckets[c]) < TopIndicators {
			buckets[c] = append(buckets[c], Entry{Label: s.Label, Score: s.Score})
		}
	}

	for _, c := range taxonomy.Categories() {
		r.Buckets = append(r.Buckets, Bucket{
			Category: c,
			Title:    c.BucketTitle(),
			Style:    c.Style(),
			Entries:  buckets[c],
		})
	}

	return r, nil
}

// Percent formats a score as a percentage with two decimals.
func Percent(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}
