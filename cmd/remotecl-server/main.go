// Command remotecl-server runs the RemoteCL server: a TCP listener that
// accepts remoted OpenCL host calls from remotecl ICD clients and dispatches
// them against a Backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/remotecl/remotecl/internal/config"
	"github.com/remotecl/remotecl/internal/logging"
	"github.com/remotecl/remotecl/internal/metrics"
	"github.com/remotecl/remotecl/pkg/server"
	"github.com/spf13/cobra"
)

func main() {
	var (
		cfgFile     string
		port        int
		compress    bool
		noCompress  bool
		events      bool
		noEvents    bool
		logLevel    string
		metricsAddr string
		backendName string
	)

	root := &cobra.Command{
		Use:   "remotecl-server",
		Short: "remotecl-server remotes OpenCL host calls over TCP",
		Long: `remotecl-server accepts connections from remotecl ICD clients and
dispatches the OpenCL host calls they forward against a local OpenCL
installation (or, absent one, a pure-Go fake used for testing).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if compress {
				cfg.Compress = true
			}
			if noCompress {
				cfg.Compress = false
			}
			if events {
				cfg.Events = true
			}
			if noEvents {
				cfg.Events = false
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if cmd.Flags().Changed("backend") {
				cfg.Backend = backendName
			}

			log, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}

			var backend server.Backend
			switch cfg.Backend {
			case "", "fake":
				backend = server.NewFakeBackend()
			default:
				return fmt.Errorf("remotecl-server: unsupported backend %q (only \"fake\" is built in)", cfg.Backend)
			}

			reg := metrics.New(nil)
			srv := server.New(backend,
				server.WithCompression(cfg.Compress),
				server.WithEventStream(cfg.Events),
				server.WithLogger(log),
				server.WithMetrics(reg),
			)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			metricsSrv := reg.Server(cfg.MetricsAddr)
			go func() {
				if err := metrics.Serve(ctx, metricsSrv); err != nil {
					log.Warn("remotecl-server: metrics server stopped", "err", err)
				}
			}()

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Info("remotecl-server: shutdown signal received")
				cancel()
				srv.Stop()
			}()

			addr := fmt.Sprintf(":%d", cfg.Port)
			log.Info("remotecl-server: listening", "addr", addr, "compress", cfg.Compress, "events", cfg.Events, "backend", cfg.Backend)
			if err := srv.ListenAndServe(addr); err != nil {
				return fmt.Errorf("remotecl-server: %w", err)
			}
			return nil
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: built-in defaults)")
	flags.IntVar(&port, "port", config.DefaultPort, "protocol listen port")
	flags.BoolVar(&compress, "compress", false, "advertise the optional payload-compression feature")
	flags.BoolVar(&noCompress, "no-compress", false, "disable the optional payload-compression feature")
	flags.BoolVar(&events, "events", false, "advertise the optional event-notification side channel")
	flags.BoolVar(&noEvents, "no-events", false, "disable the optional event-notification side channel")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "diagnostic HTTP address serving /metrics")
	flags.StringVar(&backendName, "backend", "", "backend implementation to dispatch to (fake)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
