package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fast-gateway-protocol/github/internal/config"
	"github.com/fast-gateway-protocol/github/internal/gateway"
	"github.com/fast-gateway-protocol/github/internal/github"
	"github.com/fast-gateway-protocol/github/internal/version"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("fgp-github %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Socket:  %s\n", paths.Socket)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			cfg, err := config.Load(paths.Config)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Println("Config:  not found (using defaults)")
					cfg = config.Defaults()
				} else {
					fmt.Printf("Config:  error loading: %v\n", err)
					return nil
				}
			}

			fmt.Printf("Service: name=%s workers=%d queue=%d\n",
				cfg.Service.Name, cfg.Service.Workers, cfg.Service.QueueSize)
			fmt.Printf("GitHub:  api=%s timeout=%ds\n",
				cfg.GitHub.APIBase, cfg.GitHub.TimeoutSeconds)
			if cfg.Gateway.Listen != "" {
				fmt.Printf("Listen:  %s\n", cfg.Gateway.Listen)
			}

			if _, err := github.ResolveToken(cfg.GitHub.Token); err != nil {
				fmt.Println("Token:   (none found)")
			} else {
				fmt.Println("Token:   configured")
			}

			if c, err := gateway.Dial(socketPath(cfg), 3*time.Second); err == nil {
				defer c.Close()
				if resp, err := c.Call("gateway.health", nil); err == nil && resp.OK {
					result, _ := resp.Result.(map[string]any)
					fmt.Printf("Daemon:  running (%v)\n", result["status"])
				} else {
					fmt.Println("Daemon:  running (health check failed)")
				}
			} else {
				fmt.Println("Daemon:  not running")
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
