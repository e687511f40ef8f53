package cli

import (
	"github.com/spf13/cobra"

	"github.com/fast-gateway-protocol/github/internal/config"
	"github.com/fast-gateway-protocol/github/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	logStyle string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fgp-github",
		Short: "fgp-github — GitHub service daemon",
		Long:  "fgp-github runs a long-lived daemon exposing GitHub operations over a local socket, and includes client commands for calling a running daemon.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level, logStyle)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.fgp/services/github/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")
	cmd.PersistentFlags().StringVar(&logStyle, "log-style", "pretty", "log style (pretty, json)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCallCmd())
	cmd.AddCommand(newMethodsCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// socketPath returns the configured socket, falling back to the standard
// service path.
func socketPath(cfg config.Config) string {
	if cfg.Gateway.Socket != "" {
		return cfg.Gateway.Socket
	}
	return paths.Socket
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
