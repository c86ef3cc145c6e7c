package main

import (
	"github.com/agencyhq/opscore/internal/clock"
	"github.com/agencyhq/opscore/internal/config"
	"github.com/agencyhq/opscore/internal/lease"
	"github.com/agencyhq/opscore/internal/metrics"
	"github.com/agencyhq/opscore/internal/migration"
	"github.com/agencyhq/opscore/internal/server"
	"github.com/agencyhq/opscore/pkg/db"
	"github.com/agencyhq/opscore/pkg/log"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

// API-only deployment. The evaluator is still wired for the manual trigger
// endpoint but no periodic loop is started; pair with apps/evaluator.
func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		lease.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
