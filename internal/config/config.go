package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cozy-creator/greenlens/internal/inference"
	"github.com/cozy-creator/greenlens/internal/templates"
	"github.com/cozy-creator/greenlens/internal/utils/pathutil"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Home        string             `mapstructure:"home" yaml:"home"`
	Port        int                `mapstructure:"port" yaml:"port"`
	Host        string             `mapstructure:"host" yaml:"host"`
	Environment string             `mapstructure:"environment" yaml:"environment"`
	PublicDir   string             `mapstructure:"public_dir" yaml:"public_dir"`
	Model       *ModelConfig       `mapstructure:"model" yaml:"model"`
	HuggingFace *HuggingFaceConfig `mapstructure:"huggingface" yaml:"huggingface"`
	OpenAI      *OpenAIConfig      `mapstructure:"openai" yaml:"openai"`
	Cache       *CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Batch       *BatchConfig       `mapstructure:"batch" yaml:"batch"`
}

type ModelConfig struct {
	Backend           string        `mapstructure:"backend" yaml:"backend"`
	Name              string        `mapstructure:"name" yaml:"name"`
	Device            string        `mapstructure:"device" yaml:"device"`
	Endpoint          string        `mapstructure:"endpoint" yaml:"endpoint"`
	MultiLabel        bool          `mapstructure:"multi_label" yaml:"multi_label"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
}

type HuggingFaceConfig struct {
	Token string `mapstructure:"token" yaml:"token"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model" yaml:"model"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

var config *Config

// LoadEnvAndConfigFiles resolves the home directory, creates the config and
// env files from their templates when missing, loads the env file into the
// process environment and unmarshals the merged configuration.
func LoadEnvAndConfigFiles() error {
	home, err := getHome()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(home, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}
	viper.Set("home", home)

	envFile := viper.GetString("env_file")
	if envFile == "" {
		envFile = filepath.Join(home, ".env")
		if err := pathutil.EnsureFile(envFile, templates.WriteEnv); err != nil {
			return fmt.Errorf("failed to create .env file: %w", err)
		}
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	configFile := viper.GetString("config_file")
	if configFile == "" {
		configFile = filepath.Join(home, "config.yaml")
		if err := pathutil.EnsureFile(configFile, templates.WriteConfig); err != nil {
			return fmt.Errorf("failed to create config.yaml file: %w", err)
		}
	}
	viper.SetConfigFile(configFile)

	return LoadConfig(true)
}

// LoadConfig reads the config file, if one is set, and unmarshals viper's
// merged settings.
func LoadConfig(reload bool) error {
	if config != nil && !reload {
		return fmt.Errorf("config already loaded")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	config = cfg
	return nil
}

func IsLoaded() bool {
	return config != nil
}

func GetConfig() *Config {
	return config
}

func MustGetConfig() *Config {
	if config == nil {
		panic("config not loaded")
	}

	return config
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}

	if !slices.Contains(Environments, c.Environment) {
		return fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidEnvironment, c.Environment, strings.Join(Environments, ", "))
	}

	if c.Model == nil || c.Model.Name == "" {
		return ErrModelNotSet
	}

	switch c.Model.Backend {
	case inference.BackendHuggingFace, inference.BackendOpenAI, inference.BackendCompatible:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Model.Backend)
	}

	if _, err := inference.ParseDevice(c.Model.Device); err != nil {
		return err
	}

	if c.Batch != nil && c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers)
	}

	return nil
}

// BackendOptions collects the settings the model backend needs.
func (c *Config) BackendOptions() inference.BackendOptions {
	opts := inference.BackendOptions{
		Backend:           c.Model.Backend,
		Model:             c.Model.Name,
		Endpoint:          c.Model.Endpoint,
		Timeout:           c.Model.Timeout,
		RequestsPerSecond: c.Model.RequestsPerSecond,
		Burst:             c.Model.Burst,
	}

	if c.HuggingFace != nil {
		opts.HuggingFaceToken = c.HuggingFace.Token
	}

	if c.OpenAI != nil {
		opts.OpenAIAPIKey = c.OpenAI.APIKey
		opts.OpenAIBaseURL = c.OpenAI.BaseURL
		opts.OpenAIModel = c.OpenAI.Model
	}

	return opts
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	if c.HuggingFace != nil {
		hf := *c.HuggingFace
		hf.Token = mask(hf.Token)
		out.HuggingFace = &hf
	}
	if c.OpenAI != nil {
		oa := *c.OpenAI
		oa.APIKey = mask(oa.APIKey)
		out.OpenAI = &oa
	}
	return &out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}

// Returns the home directory path, from the `home` flag or GREENLENS_HOME,
// falling back to the default.
func getHome() (string, error) {
	home := viper.GetString("home")
	if home == "" {
		home = DefaultHome
	}

	home, err := pathutil.ExpandPath(home)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHomeExpandFailed, err)
	}

	return home, nil
}
