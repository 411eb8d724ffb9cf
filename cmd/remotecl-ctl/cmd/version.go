package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// remoteclCtlVersion is set at build time via
// -ldflags "-X github.com/remotecl/remotecl/cmd/remotecl-ctl/cmd.remoteclCtlVersion=x.y.z"
var remoteclCtlVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the remotecl-ctl version and the server diagnostic endpoint's HTTP status (the server version is not reported)",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "remotecl-ctl version %s\n", remoteclCtlVersion)

		resp, err := httpClient.Get("http://" + metricsAddr + "/metrics")
		if err != nil {
			return fmt.Errorf("remotecl-ctl: diagnostic endpoint %s unreachable: %w", metricsAddr, err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		fmt.Fprintf(cmd.OutOrStdout(), "server diagnostic endpoint: %s (http %d)\n", metricsAddr, resp.StatusCode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
