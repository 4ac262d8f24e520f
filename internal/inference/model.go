// Package inference is the boundary to the pretrained zero-shot classification
// model. A Backend opens a Model bound to a device; a Model scores a text
// against a list of candidate labels.
package inference

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

type Device string

const (
	DeviceAuto   Device = "auto"
	DeviceGPU    Device = "gpu"
	DeviceCPU    Device = "cpu"
	DeviceHosted Device = "hosted"
)

func ParseDevice(s string) (Device, error) {
	switch d := Device(s); d {
	case DeviceAuto, DeviceGPU, DeviceCPU:
		return d, nil
	case "":
		return DeviceAuto, nil
	default:
		return "", fmt.Errorf("unknown device %q (expected auto, gpu or cpu)", s)
	}
}

// Score is the model's score for one candidate label.
type Score struct {
	Label string  `json:"label" msgpack:"label"`
	Score float64 `json:"score" msgpack:"score"`
}

// Result is the list of scores ordered by descending score.
type Result []Score

// Top returns the highest scoring entry.
func (r Result) Top() (Score, bool) {
	if len(r) == 0 {
		return Score{}, false
	}
	return r[0], true
}

func (r Result) Labels() []string {
	labels := make([]string, len(r))
	for i, s := range r {
		labels[i] = s.Label
	}
	return labels
}

// Model is a loaded zero-shot classifier. Implementations are safe for
// concurrent use.
type Model interface {
	// Classify scores text against labels. With multiLabel false the scores
	// form a distribution over labels; with multiLabel true each score is an
	// independent probability.
	Classify(ctx context.Context, text string, labels []string, multiLabel bool) (Result, error)
	Name() string
	Device() Device
}

// Backend opens models on a device. Open may issue a warm-up request and
// fails when the device is unavailable.
type Backend interface {
	Open(ctx context.Context, device Device) (Model, error)
	// Devices lists the devices the backend can open, most preferred first.
	Devices() []Device
	Name() string
}

var (
	ErrNoLabels           = errors.New("no candidate labels")
	ErrUnexpectedResponse = errors.New("unexpected model response")
)

// checkResult verifies the model scored every requested label exactly once
// with a score in [0,1], and returns the scores ordered by descending score.
// Equal scores keep the order the model returned them in.
func checkResult(res Result, labels []string) (Result, error) {
	if len(res) != len(labels) {
		return nil, fmt.Errorf("%w: got %d scores for %d labels", ErrUnexpectedResponse, len(res), len(labels))
	}

	want := make(map[string]bool, len(labels))
	for _, l := range labels {
		want[l] = true
	}

	for _, s := range res {
		if !want[s.Label] {
			return nil, fmt.Errorf("%w: unexpected or repeated label %q", ErrUnexpectedResponse, s.Label)
		}
		delete(want, s.Label)

		if s.Score < 0 || s.Score > 1 || s.Score != s.Score {
			return nil, fmt.Errorf("%w: score %v for %q out of range", ErrUnexpectedResponse, s.Score, s.Label)
		}
	}

	out := make(Result, len(res))
	copy(out, res)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	return out, nil
}
