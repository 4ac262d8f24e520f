package templates

import "os"

const configTemplate = `# GreenLens configuration.
# Every key can be overridden with a GREENLENS_ environment variable,
# e.g. GREENLENS_MODEL_DEVICE=cpu.

host: localhost
port: 8881
environment: dev

model:
  # huggingface, openai or openai-compatible
  backend: huggingface
  name: facebook/bart-large-mnli
  # auto tries gpu first and falls back to cpu
  device: auto
  endpoint: https://api-inference.huggingface.co
  multi_label: false
  timeout: 60s
  # 0 disables client-side rate limiting
  requests_per_second: 0
  burst: 1

# Used by the openai and openai-compatible backends. The compatible backend
# also needs base_url, e.g. http://localhost:11434/v1 for Ollama.
openai:
  model: gpt-4o-mini
  # base_url: http://localhost:11434/v1

cache:
  enabled: true
  ttl: 1h

batch:
  workers: 4
`

const envTemplate = `# Secrets for GreenLens. Values already set in the environment win.
HF_TOKEN=
OPENAI_API_KEY=
`

func GetConfigTemplate() string {
	return configTemplate
}

func WriteConfig(path string) error {
	return writeFile(path, configTemplate, 0o644)
}

func WriteEnv(path string) error {
	return writeFile(path, envTemplate, 0o600)
}

func writeFile(path, content string, perm os.FileMode) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteString(content); err != nil {
		return err
	}

	return nil
}
