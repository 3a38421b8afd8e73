package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-bpe/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tokenizer HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := activeCfg

			enc, f, err := loadEncoder(cfg.Paths.ModelPath)
			if err != nil {
				return err
			}

			srv := server.New(cfg, enc, f.Vocabulary()).
				WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeout) * time.Second)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	return cmd
}
