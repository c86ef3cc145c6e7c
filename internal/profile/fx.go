package profile

import (
	"github.com/agencyhq/opscore/internal/profile/repository"
	"github.com/agencyhq/opscore/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
