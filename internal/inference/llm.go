package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

const llmSeed int64 = 420

const scorerPrompt = `You are a zero-shot text classifier.
Score how well the user's text matches each of these candidate labels:
{{range .Labels}}- {{.}}
{{end}}
{{if .MultiLabel -}}
Score every label independently with a probability between 0 and 1; the scores do not need to sum to 1.
{{- else -}}
The labels are mutually exclusive; give a probability distribution over them that sums to 1.
{{- end}}
Reply with a JSON object of the form {"scores": {"<label>": <probability>, ...}} using the labels exactly as written above.`

var scorerTemplate = template.Must(template.New("scorer").Parse(scorerPrompt))

// chatCompleter sends one system and one user message and returns the raw
// JSON content of the reply.
type chatCompleter interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// llmModel emulates a zero-shot classifier on top of a chat model.
type llmModel struct {
	name      string
	completer chatCompleter
}

func (m *llmModel) Name() string   { return m.name }
func (m *llmModel) Device() Device { return DeviceHosted }

func (m *llmModel) Classify(ctx context.Context, text string, labels []string, multiLabel bool) (Result, error) {
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}

	var buf bytes.Buffer
	if err := scorerTemplate.Execute(&buf, struct {
		Labels     []string
		MultiLabel bool
	}{labels, multiLabel}); err != nil {
		return nil, err
	}

	content, err := m.completer.complete(ctx, buf.String(), text)
	if err != nil {
		return nil, err
	}

	return parseScores(content, labels, multiLabel)
}

type llmScores struct {
	Scores map[string]float64 `json:"scores"`
}

func parseScores(content string, labels []string, multiLabel bool) (Result, error) {
	var parsed llmScores
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err != nil {
		return nil, fmt.Errorf("could not parse response: %w", err)
	}

	res := make(Result, 0, len(labels))
	var sum float64
	for _, label := range labels {
		score, ok := parsed.Scores[label]
		if !ok {
			return nil, fmt.Errorf("%w: no score for %q", ErrUnexpectedResponse, label)
		}
		score = min(max(score, 0), 1)
		sum += score
		res = append(res, Score{Label: label, Score: score})
	}

	if !multiLabel {
		if sum == 0 {
			return nil, fmt.Errorf("%w: all scores are zero", ErrUnexpectedResponse)
		}
		for i := range res {
			res[i].Score /= sum
		}
	}

	return checkResult(res, labels)
}

func warmup(ctx context.Context, m Model) error {
	if _, err := m.Classify(ctx, warmupText, warmupLabels, false); err != nil {
		return fmt.Errorf("warm-up failed: %w", err)
	}
	return nil
}
