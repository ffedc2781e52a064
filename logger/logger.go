package logger

import (
	"github.com/Pavangowda-dev/StockIQ/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a zap logger with JSON output. Development environments get
// debug level; everything else logs at info.
func New(cfg config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = "json"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stdout"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	if cfg.Environment == "development" {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	log, err := zapCfg.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("service", cfg.AppName))
	zap.ReplaceGlobals(log)
	return log, nil
}
