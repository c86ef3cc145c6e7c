package client

import (
	"github.com/agencyhq/opscore/internal/client/repository"
	"github.com/agencyhq/opscore/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
