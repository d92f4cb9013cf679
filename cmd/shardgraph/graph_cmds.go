package main

import (
	"github.com/spf13/cobra"

	"github.com/cuemby/shardgraph/internal/column"
	"github.com/cuemby/shardgraph/internal/parquetio"
)

var createGraphCmd = &cobra.Command{
	Use:   "create-graph",
	Short: "Create the graph named by --graph if it does not already exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		directed, _ := cmd.Flags().GetBool("directed")
		h, err := openGraph(cmd, directed, true)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()
		emit(Envelope{ReturnInfo: map[string]any{"directed": directed}})
		return nil
	},
}

var addSeriesCmd = &cobra.Command{
	Use:   "add-series <qname>",
	Short: "Add a series (node.* or edge.*) with the given type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, false, false)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		typ, _ := cmd.Flags().GetString("type")
		sparse, _ := cmd.Flags().GetBool("sparse")
		tag, err := parquetio.TagFor(parquetio.FieldType(typ))
		if err != nil {
			fail(err)
			return nil
		}
		kind := column.Dense
		if sparse {
			kind = column.Sparse
		}
		if err := h.g.AddSeries(args[0], tag, kind); err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{})
		return nil
	},
}

var dropSeriesCmd = &cobra.Command{
	Use:   "drop-series <qname>",
	Short: "Drop a series' backing storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, false, false)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()
		if err := h.g.DropSeries(args[0]); err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{})
		return nil
	},
}

func init() {
	createGraphCmd.Flags().Bool("directed", false, "Create the graph as directed")

	addSeriesCmd.Flags().String("type", "", "Parquet-style type: INT32, INT64, FLOAT, DOUBLE, BYTE_ARRAY, BOOLEAN")
	addSeriesCmd.Flags().Bool("sparse", false, "Use sparse column storage instead of dense")
	addSeriesCmd.MarkFlagRequired("type")
}
