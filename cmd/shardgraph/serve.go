package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuemby/shardgraph/pkg/log"
	"github.com/cuemby/shardgraph/pkg/metrics"
)

// serveCmd is the one long-running shardgraph process: it opens this
// shard's graph, starts the metrics collector, and serves /metrics,
// /health, /ready, /live until signaled, the same inline metrics-endpoint
// wiring cmd/warren's cluster-init/manager-join commands run alongside
// their daemon loop rather than a one-shot operation.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run this shard as a long-lived process exposing metrics and health endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		directed, _ := cmd.Flags().GetBool("directed")
		h, err := openGraph(cmd, directed, true)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		metrics.SetVersion(Version)
		metrics.RegisterComponent("datastore", true, "open")
		metrics.RegisterComponent("graph", true, "open")
		metrics.RegisterComponent("cluster", false, "joining")

		collector := metrics.NewCollector(h.g, h.cl)
		collector.Start()
		defer collector.Stop()

		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())

		graphKey, _ := cmd.Flags().GetString("graph")
		shardLog := log.Shard(h.cl.Rank()).WithGraph(graphKey)

		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			shardLog.Logger().Info().Str("addr", metricsAddr).Msg("metrics endpoint listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("metrics server stopped", err)
			}
		}()

		metrics.RegisterComponent("cluster", true, "joined")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		shardLog.Logger().Info().Msg("shutting down")
		return srv.Close()
	},
}

func init() {
	serveCmd.Flags().Bool("directed", false, "Treat the graph as directed")
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address to serve /metrics, /health, /ready, /live on")
}
