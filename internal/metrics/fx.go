package metrics

import (
	"github.com/agencyhq/opscore/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Invoke(ensureEvaluatorMetrics),
)

func ensureEvaluatorMetrics(cfg config.Config) {
	EvaluatorWithConfig(Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	})
}
