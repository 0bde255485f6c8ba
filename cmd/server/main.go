package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/pitch/internal/core/observability/log"
	"github.com/zeusync/pitch/internal/core/system"
	"github.com/zeusync/pitch/internal/injector"
	"github.com/zeusync/pitch/internal/server"
)

func main() {
	configPath := flag.String("config", "", "match config YAML; built-in defaults when empty")
	addr := flag.String("addr", "127.0.0.1:8080", "spectator listen address")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	token := flag.String("token", "", "token required from spectators")
	flag.Parse()

	if err := run(*configPath, *addr, *level, *token); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configPath, addr, level, token string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}

	match := system.DefaultConfig()
	if configPath != "" {
		if match, err = system.LoadConfigFile(configPath); err != nil {
			return err
		}
	}
	srvCfg := server.DefaultServerConfig()
	srvCfg.ListenAddr = addr
	srvCfg.Token = token

	app, cleanup, err := injector.InitializeApp(injector.Options{Match: match, Server: srvCfg, LogLevel: lvl})
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() { _ = app.Logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.World.Run(ctx) })
	g.Go(func() error { return app.Server.Run(ctx) })
	g.Go(func() error { return app.HTTP.Serve(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		// hijacked websocket connections are not closed by http.Server.Shutdown
		return app.Server.Close()
	})

	app.Logger.Info("Match server running",
		log.String("match_id", app.World.ID()),
		log.String("addr", addr))
	return g.Wait()
}
