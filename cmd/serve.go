package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/mosaic/internal/repositories"
	"github.com/desertthunder/mosaic/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve exposes the local catalog as JSON pages until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}
	token := cmd.String("token")
	if token == "" {
		token = r.config.Source.Token
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.NewCatalogRouter(repositories.NewMediaRepository(db), token, r.logger)
	r.logger.Debug("catalog routes", "routes", router.Routes(), "auth", token != "")
	return server.Serve(ctx, addr, router, r.logger)
}
