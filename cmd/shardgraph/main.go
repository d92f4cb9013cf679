package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/shardgraph/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shardgraph",
	Short: "shardgraph - a sharded columnar record store with a graph overlay",
	Long: `shardgraph stores heterogeneous tabular and graph-structured data
across a fixed number of shards, with a graph overlay (where-clauses,
n-hop reachability, deterministic sampling) layered over plain columnar
record stores.

Every command here is one shard's process invocation: it opens its own
slice of the datastore, joins the cluster (in-process for a single shard,
gRPC for a distributed one), runs one operation, and prints a JSON
return-code envelope on stdout.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"shardgraph version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (internal/config)")
	rootCmd.PersistentFlags().String("data-dir", "", "Datastore root directory")
	rootCmd.PersistentFlags().Int("shard-count", 0, "Total number of shards in the cluster")
	rootCmd.PersistentFlags().Int("rank", -1, "This process' shard rank")
	rootCmd.PersistentFlags().String("cluster-addr", "", "rank-0 coordinator gRPC address (empty = single-process mode)")
	rootCmd.PersistentFlags().String("graph", "default", "Graph key within the datastore")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(createGraphCmd)
	rootCmd.AddCommand(addSeriesCmd)
	rootCmd.AddCommand(dropSeriesCmd)
	rootCmd.AddCommand(ingestParquetEdgesCmd)
	rootCmd.AddCommand(dumpParquetNodesCmd)
	rootCmd.AddCommand(dumpParquetEdgesCmd)
	rootCmd.AddCommand(dumpCSVCmd)
	rootCmd.AddCommand(readVerticesCmd)
	rootCmd.AddCommand(readEdgesCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(addFakerCmd)
	rootCmd.AddCommand(eraseEdgesCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(sampleEdgesCmd)
	rootCmd.AddCommand(sampleNodesCmd)
	rootCmd.AddCommand(selectSampleEdgesCmd)
	rootCmd.AddCommand(selectSampleNodesCmd)
	rootCmd.AddCommand(nhopsCmd)
	rootCmd.AddCommand(degreesCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(histCmd)
	rootCmd.AddCommand(kcoreCmd)
	rootCmd.AddCommand(topkCmd)
	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
