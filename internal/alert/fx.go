package alert

import (
	"github.com/agencyhq/opscore/internal/alert/repository"
	"github.com/agencyhq/opscore/internal/alert/service"
	"go.uber.org/fx"
)

var Module = fx.Module("alert.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
