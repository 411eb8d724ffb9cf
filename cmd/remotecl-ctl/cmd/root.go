// Package cmd implements remotecl-ctl, the operator-facing CLI for
// inspecting a running remotecl-server: status dials its protocol port,
// version queries its diagnostic HTTP endpoint.
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	serverAddr  string
	metricsAddr string

	httpClient = &http.Client{Timeout: 5 * time.Second}
)

// rootCmd is the base command for remotecl-ctl.
var rootCmd = &cobra.Command{
	Use:           "remotecl-ctl",
	Short:         "remotecl-ctl inspects a running remotecl-server",
	Long:          `remotecl-ctl is the operator CLI for RemoteCL, a transparent remoting layer for OpenCL host calls. It checks whether a remotecl-server's protocol port is reachable and queries its diagnostic HTTP endpoint.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// RootCmd returns the root cobra.Command for testing purposes.
func RootCmd() *cobra.Command {
	return rootCmd
}

// SetHTTPClient allows tests to inject a client pointed at a test server.
func SetHTTPClient(c *http.Client) {
	httpClient = c
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (accepted, but not read by any remotecl-ctl command)")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:23857", "remotecl-server protocol address")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics", "localhost:9464", "remotecl-server diagnostic HTTP address")
}
