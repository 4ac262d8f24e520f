// Package model owns the single model handle of the process: it loads the
// named pretrained model once, picks the device, and keeps the handle for
// every later request.
package model

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cozy-creator/greenlens/internal/inference"
	"go.uber.org/zap"
)

type Loader struct {
	backend inference.Backend
	name    string
	device  inference.Device
	logger  *zap.Logger
	onState func(State)

	// loadMu serializes construction; mu guards the fields below and is
	// never held across a backend call.
	loadMu   sync.Mutex
	mu       sync.RWMutex
	state    State
	handle   inference.Model
	err      error
	loadedIn time.Duration
}

type LoaderOption func(*Loader)

func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithStateObserver registers a callback run on every state transition.
func WithStateObserver(fn func(State)) LoaderOption {
	return func(l *Loader) {
		l.onState = fn
	}
}

// NewLoader prepares a loader for the named model. Nothing is contacted until
// Load is called.
func NewLoader(backend inference.Backend, name string, device inference.Device, options ...LoaderOption) *Loader {
	l := &Loader{
		backend: backend,
		name:    name,
		device:  device,
		logger:  zap.NewNop(),
		state:   StateUnloaded,
	}

	for _, opt := range options {
		opt(l)
	}

	if l.onState != nil {
		l.onState(l.state)
	}

	return l
}

// Load returns the model handle, constructing it on the first call. Later
// calls return the same handle. A failed load is final: later calls return
// the recorded error without contacting the backend again.
func (l *Loader) Load(ctx context.Context) (inference.Model, error) {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	l.mu.RLock()
	state, handle, err := l.state, l.handle, l.err
	l.mu.RUnlock()

	switch state {
	case StateReady:
		return handle, nil
	case StateFailed:
		return nil, err
	}

	l.setState(StateLoading)
	start := time.Now()

	devices, err := l.plan()
	if err != nil {
		return nil, l.fail(devices, err)
	}

	var errs []error
	for _, device := range devices {
		l.logger.Info("loading model",
			zap.String("model", l.name),
			zap.String("backend", l.backend.Name()),
			zap.String("device", string(device)),
		)

		handle, err := l.backend.Open(ctx, device)
		if err != nil {
			l.logger.Warn("device unavailable", zap.String("device", string(device)), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		took := time.Since(start)
		l.mu.Lock()
		l.handle = handle
		l.loadedIn = took
		l.mu.Unlock()
		l.setState(StateReady)

		l.logger.Info("model ready",
			zap.String("model", handle.Name()),
			zap.String("device", string(handle.Device())),
			zap.Duration("took", took),
		)

		return handle, nil
	}

	return nil, l.fail(devices, errors.Join(errs...))
}

func (l *Loader) fail(devices []inference.Device, err error) error {
	loadErr := &LoadError{
		Model:   l.name,
		Backend: l.backend.Name(),
		Devices: devices,
		Err:     err,
	}

	l.mu.Lock()
	l.err = loadErr
	l.mu.Unlock()
	l.setState(StateFailed)

	l.logger.Error("failed to load model", zap.Error(loadErr))
	return loadErr
}

// plan lists the devices to try in order. Auto tries every device the
// backend offers, most preferred first. A pinned device is tried alone,
// except on hosted backends where the provider chooses.
func (l *Loader) plan() ([]inference.Device, error) {
	offered := l.backend.Devices()

	if l.device == inference.DeviceAuto || l.device == "" {
		return offered, nil
	}

	if slices.Equal(offered, []inference.Device{inference.DeviceHosted}) {
		l.logger.Warn("backend is hosted, ignoring device setting", zap.String("device", string(l.device)))
		return offered, nil
	}

	if !slices.Contains(offered, l.device) {
		return []inference.Device{l.device}, fmt.Errorf("backend %s cannot run on %s", l.backend.Name(), l.device)
	}

	return []inference.Device{l.device}, nil
}

func (l *Loader) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()

	if l.onState != nil {
		l.onState(s)
	}
}

func (l *Loader) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Handle returns the loaded handle, or nil unless the loader is ready.
func (l *Loader) Handle() inference.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.handle
}

// Err returns the load error once the loader has failed.
func (l *Loader) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *Loader) Info() Info {
	l.mu.RLock()
	defer l.mu.RUnlock()

	info := Info{
		Name:     l.name,
		Backend:  l.backend.Name(),
		State:    l.state,
		LoadedIn: l.loadedIn,
	}
	if l.handle != nil {
		info.Name = l.handle.Name()
		info.Device = l.handle.Device()
	}
	if l.err != nil {
		info.Error = l.err.Error()
	}

	return info
}
