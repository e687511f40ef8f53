package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fast-gateway-protocol/github/internal/config"
	"github.com/fast-gateway-protocol/github/internal/gateway"
	"github.com/fast-gateway-protocol/github/internal/github"
	"github.com/fast-gateway-protocol/github/internal/service"
)

func newServeCmd() *cobra.Command {
	var (
		socket  string
		listen  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if socket != "" {
				cfg.Gateway.Socket = socket
			}
			if listen != "" {
				cfg.Gateway.Listen = listen
			}
			if workers != 0 {
				cfg.Service.Workers = workers
			}
			if cfg.Gateway.Socket == "" {
				cfg.Gateway.Socket = paths.Socket
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("preparing service directories: %w", err)
			}

			token, err := github.ResolveToken(cfg.GitHub.Token)
			if err != nil {
				return err
			}

			client := github.NewClient(token, log,
				github.WithBaseURLs(cfg.GitHub.APIBase, cfg.GitHub.GraphQLURL),
				github.WithTimeout(time.Duration(cfg.GitHub.TimeoutSeconds)*time.Second),
			)

			svc, err := service.New(client, cfg.Service.Name, cfg.Service.Workers, cfg.Service.QueueSize, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := svc.OnStart(ctx); err != nil {
				return err
			}

			srv := gateway.New(cfg.Gateway, svc, log)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&socket, "socket", "", "override the daemon socket path")
	cmd.Flags().StringVar(&listen, "listen", "", "enable the TCP listener on this host:port")
	cmd.Flags().IntVar(&workers, "workers", 0, "override the worker pool size")

	return cmd
}
