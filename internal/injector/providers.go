package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/pitch/internal/core/events/bus"
	"github.com/zeusync/pitch/internal/core/observability/log"
	"github.com/zeusync/pitch/internal/core/system"
	"github.com/zeusync/pitch/internal/server"
)

// Options are the inputs of the dependency graph.
type Options struct {
	Match    system.MatchConfig
	Server   server.Config
	LogLevel log.Level
}

// App is a fully wired match server.
type App struct {
	Logger log.Log
	Events bus.EventBus
	World  *system.World
	Server *server.Server
	HTTP   *server.HTTPServer
}

var ProviderSet = wire.NewSet(
	ProvideMatchConfig,
	ProvideServerConfig,
	ProvideLogger,
	ProvideEventBus,
	ProvideWorld,
	ProvideServer,
	ProvideHTTPServer,
	wire.Bind(new(server.Source), new(*system.World)),
	NewApp,
)

func ProvideMatchConfig(o Options) system.MatchConfig { return o.Match }

func ProvideServerConfig(o Options) server.Config { return o.Server }

func ProvideLogger(o Options) log.Log { return log.New(o.LogLevel) }

func ProvideEventBus() bus.EventBus { return bus.New() }

func ProvideWorld(cfg system.MatchConfig, logger log.Log, events bus.EventBus) (*system.World, func(), error) {
	w, err := system.NewWorld(cfg, logger, events)
	if err != nil {
		return nil, nil, err
	}
	return w, w.Close, nil
}

func ProvideServer(cfg server.Config, source server.Source, events bus.EventBus, logger log.Log) (*server.Server, func(), error) {
	s, err := server.NewServer(cfg, source, events, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

func ProvideHTTPServer(cfg server.Config, s *server.Server, logger log.Log) *server.HTTPServer {
	return server.NewHTTPServer(cfg.ListenAddr, s.Handler(), logger)
}

func NewApp(logger log.Log, events bus.EventBus, world *system.World, srv *server.Server, http *server.HTTPServer) *App {
	return &App{Logger: logger, Events: events, World: world, Server: srv, HTTP: http}
}
