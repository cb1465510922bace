//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/lander/internal/core/observability/log"
	"github.com/zeusync/lander/internal/core/observability/metrics"
	"github.com/zeusync/lander/internal/server"
)

func InitializeServer(config server.Config, world server.World, logger log.Log) *server.Server {
	wire.Build(
		metrics.New,
		wire.Bind(new(server.Metrics), new(*metrics.Prometheus)),
		ProvideServer,
	)
	return nil
}
