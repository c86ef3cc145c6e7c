package main

import (
	"github.com/agencyhq/opscore/internal/alert"
	"github.com/agencyhq/opscore/internal/budget"
	"github.com/agencyhq/opscore/internal/client"
	"github.com/agencyhq/opscore/internal/clock"
	"github.com/agencyhq/opscore/internal/config"
	"github.com/agencyhq/opscore/internal/evaluator"
	"github.com/agencyhq/opscore/internal/lease"
	"github.com/agencyhq/opscore/internal/metrics"
	"github.com/agencyhq/opscore/internal/notification"
	"github.com/agencyhq/opscore/internal/offering"
	"github.com/agencyhq/opscore/internal/profile"
	"github.com/agencyhq/opscore/pkg/db"
	"github.com/agencyhq/opscore/pkg/log"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

// Standalone evaluator worker. No HTTP server; the redis lease keeps it
// from racing an API instance that triggers manual runs.
func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		lease.Module,

		budget.Module,
		// budget.Module's service validates against client and offering repos.
		client.Module,
		offering.Module,
		alert.Module,
		profile.Module,
		notification.Module,
		evaluator.Module,

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
