package main

import (
	"github.com/agencyhq/opscore/internal/clock"
	"github.com/agencyhq/opscore/internal/config"
	"github.com/agencyhq/opscore/internal/evaluator"
	"github.com/agencyhq/opscore/internal/lease"
	"github.com/agencyhq/opscore/internal/metrics"
	"github.com/agencyhq/opscore/internal/migration"
	"github.com/agencyhq/opscore/internal/server"
	"github.com/agencyhq/opscore/pkg/db"
	"github.com/agencyhq/opscore/pkg/log"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

// The monolith serves the full API and runs the evaluator loop in-process.
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

		fx.Invoke(evaluator.StartLoop),
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
