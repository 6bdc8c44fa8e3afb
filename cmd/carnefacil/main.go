package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/carnefacil/carnefacil/internal/clock"
	"github.com/carnefacil/carnefacil/internal/config"
	"github.com/carnefacil/carnefacil/internal/migration"
	"github.com/carnefacil/carnefacil/internal/observability"
	"github.com/carnefacil/carnefacil/internal/server"
	"github.com/carnefacil/carnefacil/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
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
