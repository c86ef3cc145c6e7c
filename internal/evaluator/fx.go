package evaluator

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("evaluator",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
)

// StartLoop runs the evaluator on its interval for binaries that embed the
// periodic loop (monolith and apps/evaluator). API-only binaries omit it.
func StartLoop(lc fx.Lifecycle, e *Evaluator) {
	loopCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go e.RunForever(loopCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
