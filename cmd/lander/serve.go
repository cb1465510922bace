package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeusync/lander/internal/injector"
	"github.com/zeusync/lander/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	config := server.DefaultConfig()
	var shutdown time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lander sessions over websocket and QUIC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, layout, s, err := a.world()
			if err != nil {
				return err
			}
			if s.StepLimit > 0 && !cmd.Flags().Changed("steps") {
				config.StepLimit = s.StepLimit
			}

			srv := injector.InitializeServer(config, server.World{Config: cfg, Layout: layout}, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err = srv.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), shutdown)
			defer cancel()
			return srv.Stop(stopCtx)
		},
	}

	cmd.Flags().StringVar(&config.Addr, "addr", config.Addr, "HTTP listen address (websocket, metrics, health)")
	cmd.Flags().StringVar(&config.QUICAddr, "quic-addr", "", "QUIC listen address, empty to disable")
	cmd.Flags().IntVar(&config.MaxSessions, "max-sessions", config.MaxSessions, "Maximum concurrent sessions")
	cmd.Flags().IntVar(&config.StepLimit, "steps", config.StepLimit, "Step limit per episode, 0 for none")
	cmd.Flags().DurationVar(&shutdown, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	return cmd
}
