package logger

import (
	"github.com/cozy-creator/greenlens/internal/config"

	"go.uber.org/zap"
)

// NewLogger picks the zap preset for the environment: JSON in prod, the
// example logger in tests, and the colored development logger otherwise.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)

	switch cfg.Environment {
	case "prod":
		l, err = zap.NewProduction()
	case "test":
		l = zap.NewExample()
	default:
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}

	return l.With(zap.String("service", "greenlens")), nil
}

func MustNewLogger(cfg *config.Config) *zap.Logger {
	return zap.Must(NewLogger(cfg))
}
