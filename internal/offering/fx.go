package offering

import (
	"github.com/agencyhq/opscore/internal/offering/repository"
	"github.com/agencyhq/opscore/internal/offering/service"
	"go.uber.org/fx"
)

var Module = fx.Module("offering.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
