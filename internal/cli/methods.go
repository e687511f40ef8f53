package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fast-gateway-protocol/github/internal/config"
	"github.com/fast-gateway-protocol/github/internal/gateway"
)

func newMethodsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "methods",
		Short: "List the methods a running daemon serves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			c, err := gateway.Dial(socketPath(cfg), 10*time.Second)
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.Call("methods", nil)
			if err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
			}

			if asJSON {
				out, err := json.MarshalIndent(resp.Result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			result, _ := resp.Result.(map[string]any)
			methods, _ := result["methods"].([]any)
			fmt.Printf("%s (protocol %v)\n\n", result["service"], result["protocol"])
			for _, raw := range methods {
				m, _ := raw.(map[string]any)
				fmt.Printf("  %-15s %s\n", m["name"], m["description"])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full catalog as JSON")

	return cmd
}
