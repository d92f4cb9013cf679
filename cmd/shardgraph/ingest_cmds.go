package main

import (
	"github.com/spf13/cobra"

	"github.com/cuemby/shardgraph/pkg/metrics"
)

var ingestParquetEdgesCmd = &cobra.Command{
	Use:   "ingest-parquet-edges <path>",
	Short: "Ingest edges (and discovered nodes) from Parquet file(s)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		directed, _ := cmd.Flags().GetBool("directed")
		h, err := openGraph(cmd, directed, true)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		recursive, _ := cmd.Flags().GetBool("recursive")
		uCol, _ := cmd.Flags().GetString("u-col")
		vCol, _ := cmd.Flags().GetString("v-col")
		metaPairs, _ := cmd.Flags().GetStringArray("meta")

		meta, err := parseMetaFlag(metaPairs)
		if err != nil {
			fail(err)
			return nil
		}

		before := h.g.LocalEdgeCount()
		timer := metrics.NewTimer()
		warnings, err := h.g.IngestParquetEdges(args[0], recursive, uCol, vCol, directed, meta)
		timer.ObserveDuration(metrics.IngestParquetDuration)
		if err != nil {
			fail(err)
			return nil
		}
		metrics.IngestEdgesTotal.Add(float64(h.g.LocalEdgeCount() - before))
		metrics.IngestDanglingEdgesTotal.Add(float64(warnings["dangling_endpoint"]))

		emit(Envelope{Warnings: h.cl.AllReduceSum(warnings)})
		return nil
	},
}

func init() {
	ingestParquetEdgesCmd.Flags().Bool("directed", false, "Treat the graph as directed")
	ingestParquetEdgesCmd.Flags().Bool("recursive", false, "Recurse into subdirectories of path")
	ingestParquetEdgesCmd.Flags().String("u-col", "u", "Column holding the edge source id")
	ingestParquetEdgesCmd.Flags().String("v-col", "v", "Column holding the edge destination id")
	ingestParquetEdgesCmd.Flags().StringArray("meta", nil, "Additional edge column to ingest, as col:TYPE (repeatable)")
}
