package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/cozy-creator/greenlens/internal/inference"
)

// State is the load state of the model handle.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

func States() []State {
	return []State{StateUnloaded, StateLoading, StateReady, StateFailed}
}

// LoadError reports that the model could not be loaded on any device.
type LoadError struct {
	Model   string
	Backend string
	Devices []inference.Device
	Err     error
}

func (e *LoadError) Error() string {
	devices := make([]string, len(e.Devices))
	for i, d := range e.Devices {
		devices[i] = string(d)
	}
	return fmt.Sprintf("failed to load model %s on %s (tried %s): %v",
		e.Model, e.Backend, strings.Join(devices, ", "), e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Info describes the loader for the sidebar, the healthz endpoint and the
// model info command.
type Info struct {
	Name     string           `json:"name" yaml:"name"`
	Backend  string           `json:"backend" yaml:"backend"`
	Device   inference.Device `json:"device,omitempty" yaml:"device,omitempty"`
	State    State            `json:"state" yaml:"state"`
	LoadedIn time.Duration    `json:"loaded_in,omitempty" yaml:"loaded_in,omitempty"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
}
