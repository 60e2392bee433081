package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/abrank/internal/server"
)

// Serve runs the vote tracking server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	service, err := r.statsService()
	if err != nil {
		return err
	}

	conf := *r.config
	if port := cmd.Int("port"); port != 0 {
		conf.Server.Port = int(port)
	}

	router := server.NewBasicRouter()
	router.Use(server.CORSMiddleware())
	router.Use(server.LoggingMiddleware(r.logger))
	if conf.Server.RequestsPerSec > 0 {
		router.Use(server.RateLimitMiddleware(conf.Server.RequestsPerSec, conf.Server.BurstSize))
	}
	router.Handler(server.NewTrackHandler(service, r.logger))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, conf, router, r.logger)
}
