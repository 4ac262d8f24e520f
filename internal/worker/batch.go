package worker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cozy-creator/greenlens/internal/classifier"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"go.uber.org/zap"
)

var (
	ErrNotText  = errors.New("input is not a text file")
	ErrNoClaims = errors.New("input has no claims")
)

// Analyzer is the part of the classifier the batch worker needs.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*classifier.Analysis, error)
}

// Claim is one non-blank input line.
type Claim struct {
	Line int
	Text string
}

// Record is the outcome of one claim, written as one JSON line.
type Record struct {
	ID         string  `json:"id"`
	Line       int     `json:"line"`
	Text       string  `json:"text"`
	Prediction string  `json:"prediction,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

type Summary struct {
	Total       int
	Failed      int
	Predictions map[string]int
	Elapsed     time.Duration
}

type BatchWorker struct {
	analyzer   Analyzer
	maxWorkers int
	progress   io.Writer
	logger     *zap.Logger
}

type BatchOption func(*BatchWorker)

// WithProgress sets where the progress bar is drawn. A nil writer hides it.
func WithProgress(w io.Writer) BatchOption {
	return func(b *BatchWorker) {
		b.progress = w
	}
}

func WithLogger(logger *zap.Logger) BatchOption {
	return func(b *BatchWorker) {
		b.logger = logger
	}
}

func NewBatchWorker(analyzer Analyzer, maxWorkers int, options ...BatchOption) *BatchWorker {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	b := &BatchWorker{
		analyzer:   analyzer,
		maxWorkers: maxWorkers,
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		opt(b)
	}

	return b
}

// ReadClaims reads one claim per line, skipping blank lines. The content must
// be detected as text.
func ReadClaims(r io.Reader) ([]Claim, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read claims: %w", err)
	}

	if mt := mimetype.Detect(data); !isText(mt) {
		return nil, fmt.Errorf("%w: detected %s", ErrNotText, mt.String())
	}

	var claims []Claim
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		claims = append(claims, Claim{Line: line, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read claims: %w", err)
	}

	if len(claims) == 0 {
		return nil, ErrNoClaims
	}

	return claims, nil
}

func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// Run analyzes the claims on the worker pool and writes one record per claim
// to out, in input order. A failing claim records its error and the batch
// goes on; only a write failure stops Run.
func (b *BatchWorker) Run(ctx context.Context, claims []Claim, out io.Writer) (*Summary, error) {
	start := time.Now()
	records := make([]Record, len(claims))

	var progress *mpb.Progress
	var bar *mpb.Bar
	if b.progress != nil {
		progress = mpb.New(
			mpb.WithOutput(b.progress),
			mpb.WithWidth(60),
			mpb.WithRefreshRate(180*time.Millisecond),
		)
		bar = progress.AddBar(int64(len(claims)),
			mpb.PrependDecorators(
				decor.Name("analyzing", decor.WC{W: 10, C: decor.DidentRight}),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(decor.WC{W: 5}),
				decor.Name(" ] "),
				decor.EwmaETA(decor.ET_STYLE_GO, 60),
			),
		)
	}

	wp := workerpool.New(b.maxWorkers)
	for i, claim := range claims {
		wp.Submit(func() {
			began := time.Now()
			records[i] = b.analyze(ctx, claim)
			if bar != nil {
				bar.Increment()
				bar.DecoratorEwmaUpdate(time.Since(began))
			}
		})
	}
	wp.StopWait()

	if progress != nil {
		progress.Wait()
	}

	summary := &Summary{
		Total:       len(records),
		Predictions: make(map[string]int),
	}

	enc := json.NewEncoder(out)
	for _, rec := range records {
		if rec.Error != "" {
			summary.Failed++
		} else {
			summary.Predictions[rec.Prediction]++
		}
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("failed to write record for line %d: %w", rec.Line, err)
		}
	}
	summary.Elapsed = time.Since(start)

	b.logger.Info("batch finished",
		zap.Int("total", summary.Total),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", summary.Elapsed),
	)

	return summary, nil
}

func (b *BatchWorker) analyze(ctx context.Context, claim Claim) Record {
	rec := Record{ID: uuid.NewString(), Line: claim.Line, Text: claim.Text}

	if err := ctx.Err(); err != nil {
		rec.Error = err.Error()
		return rec
	}

	analysis, err := b.analyzer.Analyze(ctx, claim.Text)
	if err != nil {
		b.logger.Warn("claim failed", zap.Int("line", claim.Line), zap.Error(err))
		rec.Error = err.Error()
		return rec
	}

	rec.ID = analysis.ID
	if top, ok := analysis.Coarse.Top(); ok {
		rec.Prediction = top.Label
		rec.Confidence = top.Score
	}

	return rec
}
