package budget

import (
	"github.com/agencyhq/opscore/internal/budget/repository"
	"github.com/agencyhq/opscore/internal/budget/service"
	"go.uber.org/fx"
)

var Module = fx.Module("budget.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
