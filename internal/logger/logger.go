package logger

import (
	"github.com/toty12222/controlo-fibra-netkamba/internal/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the root logger. Production gets JSON at info level,
// everything else gets the development console encoder.
func New(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		conf := zap.NewProductionConfig()
		conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return conf.Build()
	}
	return zap.NewDevelopment()
}

var Module = fx.Module("logger",
	fx.Provide(New),
	fx.Invoke(func(log *zap.Logger) {
		zap.ReplaceGlobals(log)
	}),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}),
)
