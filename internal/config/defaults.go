package config

import (
	"errors"
	"strings"
	"time"

	"github.com/cozy-creator/greenlens/internal/inference"
	"github.com/spf13/viper"
)

const (
	EnvPrefix   = "GREENLENS"
	DefaultHome = "~/.greenlens"
	DefaultPort = 8881
)

var Environments = []string{"dev", "test", "prod"}

var (
	ErrHomeExpandFailed   = errors.New("failed to expand home directory")
	ErrInvalidPort        = errors.New("invalid port")
	ErrInvalidEnvironment = errors.New("invalid environment")
	ErrInvalidBackend     = errors.New("unknown model backend")
	ErrModelNotSet        = errors.New("model name is not set")
)

// SetDefaults registers every key with viper. Keys viper does not know are
// skipped by Unmarshal, so environment overrides only work for keys set here.
func SetDefaults() {
	viper.SetDefault("home", DefaultHome)
	viper.SetDefault("port", DefaultPort)
	viper.SetDefault("host", "localhost")
	viper.SetDefault("environment", "dev")
	viper.SetDefault("public_dir", "")

	viper.SetDefault("model.backend", inference.BackendHuggingFace)
	viper.SetDefault("model.name", inference.DefaultModelName)
	viper.SetDefault("model.device", string(inference.DeviceAuto))
	viper.SetDefault("model.endpoint", inference.DefaultHuggingFaceEndpoint)
	viper.SetDefault("model.multi_label", false)
	viper.SetDefault("model.timeout", 60*time.Second)
	viper.SetDefault("model.requests_per_second", 0)
	viper.SetDefault("model.burst", 1)

	viper.SetDefault("huggingface.token", "")
	viper.SetDefault("openai.api_key", "")
	viper.SetDefault("openai.base_url", "")
	viper.SetDefault("openai.model", inference.DefaultOpenAIModel)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.ttl", time.Hour)

	viper.SetDefault("batch.workers", 4)
}

// BindEnvs sets the GREENLENS_ prefix and binds third-party secrets to their
// conventional, unprefixed names.
func BindEnvs() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		`-`, `_`, // convert hyphens to underscores
		`.`, `_`, // convert dots to underscores
	))
	viper.AutomaticEnv()

	// External API services (does NOT use GREENLENS_ prefix)
	viper.BindEnv("huggingface.token", "HF_TOKEN", EnvPrefix+"_HUGGINGFACE_TOKEN")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY", EnvPrefix+"_OPENAI_API_KEY")
}
