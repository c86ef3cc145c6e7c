package dispatch

import (
	"github.com/agencyhq/opscore/internal/dispatch/repository"
	"github.com/agencyhq/opscore/internal/dispatch/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dispatch.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
