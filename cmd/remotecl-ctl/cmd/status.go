package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/remotecl/remotecl/pkg/client"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether a remotecl-server is reachable (negotiated features are not reported)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		c, err := client.Dial(ctx, serverAddr, client.WithCompression(true), client.WithEventStream(true))
		if err != nil {
			return fmt.Errorf("remotecl-ctl: %s unreachable: %w", serverAddr, err)
		}
		defer c.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "server:  %s\n", serverAddr)
		fmt.Fprintf(cmd.OutOrStdout(), "status:  reachable\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
