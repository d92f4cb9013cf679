package main

import (
	"github.com/spf13/cobra"

	"github.com/cuemby/shardgraph/pkg/metrics"
)

var eraseEdgesCmd = &cobra.Command{
	Use:   "erase-edges",
	Short: "Tombstone every local edge matching --where",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, false, false)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		where, err := readWhere(cmd)
		if err != nil {
			fail(err)
			return nil
		}
		removed := h.g.EraseEdges(where)
		metrics.RemoveTotal.WithLabelValues("edge").Add(float64(removed))
		emit(Envelope{ReturnInfo: map[string]any{"removed": removed}})
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <which>",
	Short: "Tombstone every node or edge matching --where, all-reduced across shards (which is 'node' or 'edge')",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		which := args[0]
		h, err := openGraph(cmd, false, false)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		where, err := readWhere(cmd)
		if err != nil {
			fail(err)
			return nil
		}
		removed, err := h.g.Remove(which, where)
		if err != nil {
			fail(err)
			return nil
		}
		metrics.RemoveTotal.WithLabelValues(which).Add(float64(removed))
		emit(Envelope{ReturnInfo: map[string]any{"removed": removed}})
		return nil
	},
}

func init() {
	addWhereFlag(eraseEdgesCmd)
	addWhereFlag(removeCmd)
}
