// Package classifier runs a claim through the model twice, once against the
// coarse categories and once against the fine-grained indicators.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cozy-creator/greenlens/internal/inference"
	"github.com/cozy-creator/greenlens/internal/taxonomy"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Kind names one of the two model calls.
type Kind string

const (
	KindCoarse Kind = "coarse"
	KindFine   Kind = "fine"
)

var ErrModelUnavailable = errors.New("model not loaded")

// ClassificationError reports a failed model call. The claim may be
// resubmitted.
type ClassificationError struct {
	Kind Kind
	Err  error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s classification failed: %v", e.Kind, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// Analysis is the outcome of one claim.
type Analysis struct {
	ID         string           `json:"id"`
	Text       string           `json:"text"`
	Model      string           `json:"model"`
	Device     inference.Device `json:"device"`
	MultiLabel bool             `json:"multi_label"`
	Coarse     inference.Result `json:"coarse"`
	Fine       inference.Result `json:"fine"`
	Elapsed    time.Duration    `json:"elapsed"`
}

// Recorder receives per-call observations. The metrics package implements it.
type Recorder interface {
	ObserveClassification(kind string, err error, took time.Duration)
	ObserveCache(hit bool)
}

type Classifier struct {
	model      inference.Model
	multiLabel bool
	coarse     []string
	fine       []string

	cache    *Cache
	group    singleflight.Group
	logger   *zap.Logger
	recorder Recorder
}

type Option func(*Classifier)

func WithMultiLabel(multiLabel bool) Option {
	return func(c *Classifier) {
		c.multiLabel = multiLabel
	}
}

// WithCache enables result memoization. A nil cache disables it.
func WithCache(cache *Cache) Option {
	return func(c *Classifier) {
		c.cache = cache
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *Classifier) {
		c.recorder = r
	}
}

// New creates a classifier over a loaded model. A nil model is allowed; every
// Analyze call then fails with ErrModelUnavailable.
func New(model inference.Model, options ...Option) *Classifier {
	c := &Classifier{
		model:  model,
		coarse: taxonomy.CoarseLabels(),
		fine:   taxonomy.IndicatorLabels(),
		logger: zap.NewNop(),
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

func (c *Classifier) MultiLabel() bool {
	return c.multiLabel
}

// Analyze classifies text against the coarse categories, then against the
// indicators. Both results are returned or neither is; nothing is retried.
// The text is sent as given.
func (c *Classifier) Analyze(ctx context.Context, text string) (*Analysis, error) {
	if c.model == nil {
		return nil, ErrModelUnavailable
	}

	start := time.Now()
	id := uuid.NewString()
	logger := c.logger.With(zap.String("analysis_id", id))

	coarse, err := c.classify(ctx, KindCoarse, text, c.coarse)
	if err != nil {
		logger.Warn("classification failed", zap.String("kind", string(KindCoarse)), zap.Error(err))
		return nil, &ClassificationError{Kind: KindCoarse, Err: err}
	}

	fine, err := c.classify(ctx, KindFine, text, c.fine)
	if err != nil {
		logger.Warn("classification failed", zap.String("kind", string(KindFine)), zap.Error(err))
		return nil, &ClassificationError{Kind: KindFine, Err: err}
	}

	analysis := &Analysis{
		ID:         id,
		Text:       text,
		Model:      c.model.Name(),
		Device:     c.model.Device(),
		MultiLabel: c.multiLabel,
		Coarse:     coarse,
		Fine:       fine,
		Elapsed:    time.Since(start),
	}

	if top, ok := coarse.Top(); ok {
		logger.Info("claim analyzed",
			zap.String("prediction", top.Label),
			zap.Float64("confidence", top.Score),
			zap.Duration("took", analysis.Elapsed),
		)
	}

	return analysis, nil
}

func (c *Classifier) classify(ctx context.Context, kind Kind, text string, labels []string) (inference.Result, error) {
	key := cacheKey(c.model.Name(), c.multiLabel, labels, text)

	if c.cache != nil {
		res, ok := c.cache.Get(key)
		c.observeCache(ok)
		if ok {
			return res, nil
		}
	}

	// The call is shared by every caller with the same key, so it must not
	// end when one of them gives up.
	callCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		start := time.Now()
		res, err := c.model.Classify(callCtx, text, labels, c.multiLabel)
		c.observe(kind, err, time.Since(start))
		if err != nil {
			return nil, err
		}

		if c.cache != nil {
			if err := c.cache.Set(key, res); err != nil {
				c.logger.Warn("failed to cache result", zap.Error(err))
			}
		}

		return res, nil
	})

	var r singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-ch:
	}
	if r.Err != nil {
		return nil, r.Err
	}

	res := r.Val.(inference.Result)
	if r.Shared {
		// callers must not share the backing array
		res = append(inference.Result(nil), res...)
	}

	return res, nil
}

func (c *Classifier) observe(kind Kind, err error, took time.Duration) {
	if c.recorder != nil {
		c.recorder.ObserveClassification(string(kind), err, took)
	}
}

func (c *Classifier) observeCache(hit bool) {
	if c.recorder != nil {
		c.recorder.ObserveCache(hit)
	}
}
