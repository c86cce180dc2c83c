package logging

import (
	"go.uber.org/zap"
)

// New builds the process logger. mode "production" emits JSON at info level,
// anything else emits coloured console output at debug level.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	if mode == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stdout"}

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
