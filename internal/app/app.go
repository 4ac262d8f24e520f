package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/cozy-creator/greenlens/internal/classifier"
	"github.com/cozy-creator/greenlens/internal/config"
	"github.com/cozy-creator/greenlens/internal/inference"
	"github.com/cozy-creator/greenlens/internal/metrics"
	"github.com/cozy-creator/greenlens/internal/model"
	"github.com/cozy-creator/greenlens/pkg/logger"
	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	ctx        context.Context
	cancelFunc context.CancelFunc
	backend    inference.Backend
	cache      *classifier.Cache

	mu         sync.RWMutex
	classifier *classifier.Classifier

	Loader  *model.Loader
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Option funcs used to initialize the App struct
type OptionFunc func(app *App) error

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(app *App) error {
		app.Logger = logger
		return nil
	}
}

// WithBackend replaces the backend built from the config.
func WithBackend(backend inference.Backend) OptionFunc {
	return func(app *App) error {
		app.backend = backend
		return nil
	}
}

func WithMetrics(m *metrics.Metrics) OptionFunc {
	return func(app *App) error {
		app.Metrics = m
		return nil
	}
}

func NewApp(cfg *config.Config, options ...OptionFunc) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		ctx:        ctx,
		config:     cfg,
		cancelFunc: cancel,
	}

	for _, opt := range options {
		if err := opt(app); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if app.Logger == nil {
		l, err := logger.NewLogger(cfg)
		if err != nil {
			cancel()
			return nil, err
		}
		app.Logger = l
	}

	if app.Metrics == nil {
		app.Metrics = metrics.New()
	}

	if app.backend == nil {
		backend, err := inference.NewBackend(cfg.BackendOptions())
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create %s backend: %w", cfg.Model.Backend, err)
		}
		app.backend = backend
	}

	device, err := inference.ParseDevice(cfg.Model.Device)
	if err != nil {
		cancel()
		return nil, err
	}

	if cfg.Cache != nil && cfg.Cache.Enabled {
		app.cache = classifier.NewCache(cfg.Cache.TTL)
	}

	app.Loader = model.NewLoader(app.backend, cfg.Model.Name, device,
		model.WithLogger(app.Logger.Named("model")),
		model.WithStateObserver(app.Metrics.SetModelState),
	)

	return app, nil
}

// LoadModel loads the model handle and wires a classifier over it. After a
// failed load the classifier has no handle and reports the model as
// unavailable.
func (app *App) LoadModel(ctx context.Context) error {
	handle, err := app.Loader.Load(ctx)

	c := classifier.New(handle,
		classifier.WithMultiLabel(app.config.Model.MultiLabel),
		classifier.WithCache(app.cache),
		classifier.WithLogger(app.Logger.Named("classifier")),
		classifier.WithRecorder(app.Metrics),
	)

	app.mu.Lock()
	app.classifier = c
	app.mu.Unlock()

	return err
}

// Classifier returns the classifier, or nil while the model has not been
// loaded.
func (app *App) Classifier() *classifier.Classifier {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.classifier
}

func (app *App) Close() {
	app.cancelFunc()
	_ = app.Logger.Sync()
}

func (app *App) Config() *config.Config {
	return app.config
}

func (app *App) Context() context.Context {
	return app.ctx
}
