package monitor

import (
	"context"

	"github.com/toty12222/controlo-fibra-netkamba/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("monitor.worker",
	fx.Provide(newConfig),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func newConfig(cfg config.Config) Config {
	return Config{
		PollInterval:    cfg.SweepInterval,
		GracePeriodDays: cfg.GracePeriodDays,
		BatchSize:       cfg.SweepBatchSize,
	}.withDefaults()
}

func runWorker(lc fx.Lifecycle, worker *Worker) {
	// The OnStart context only covers the startup window; the sweep
	// loop needs its own context that lives until shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
