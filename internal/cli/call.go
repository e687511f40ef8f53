package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fast-gateway-protocol/github/internal/config"
	"github.com/fast-gateway-protocol/github/internal/gateway"
)

func newCallCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "call <method> [params-json]",
		Short: "Invoke a method on a running daemon",
		Long:  `Invoke a method on a running daemon, e.g. "call issues '{\"repo\":\"golang/go\"}'". The result is printed as indented JSON; dispatch errors exit non-zero.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			var params map[string]any
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
					return fmt.Errorf("params must be a JSON object: %w", err)
				}
			}

			c, err := gateway.Dial(socketPath(cfg), timeout)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Call(args[0], params)
			if err != nil {
				return err
			}
			if !resp.OK {
				fmt.Fprintf(os.Stderr, "error %s: %s\n", resp.Error.Code, resp.Error.Message)
				os.Exit(1)
			}

			out, err := json.MarshalIndent(resp.Result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "request timeout")

	return cmd
}
