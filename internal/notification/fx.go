package notification

import (
	"github.com/agencyhq/opscore/internal/notification/repository"
	"github.com/agencyhq/opscore/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
