package injector

import (
	"github.com/zeusync/lander/internal/core/observability/log"
	"github.com/zeusync/lander/internal/server"
)

// ProvideServer is server.NewServer without options.
func ProvideServer(config server.Config, world server.World, logger log.Log, m server.Metrics) *server.Server {
	return server.NewServer(config, world, logger, m)
}
