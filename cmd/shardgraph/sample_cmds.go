package main

import (
	"github.com/spf13/cobra"

	"github.com/cuemby/shardgraph/pkg/metrics"
)

func optionalSeed(cmd *cobra.Command) *int64 {
	if !cmd.Flags().Changed("seed") {
		return nil
	}
	v, _ := cmd.Flags().GetInt64("seed")
	return &v
}

var sampleEdgesCmd = &cobra.Command{
	Use:   "sample-edges <out-series> <k>",
	Short: "Uniformly mark k sampled edges matching --where into out-series",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, false, false)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		k, err := parseIntArg(args[1])
		if err != nil {
			fail(err)
			return nil
		}
		where, err := readWhere(cmd)
		if err != nil {
			fail(err)
			return nil
		}
		timer := metrics.NewTimer()
		err = h.g.SampleEdges(args[0], k, optionalSeed(cmd), where)
		timer.ObserveDurationVec(metrics.SampleDuration, "edge")
		if err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{})
		return nil
	},
}

var sampleNodesCmd = &cobra.Command{
	Use:   "sample-nodes <out-series> <k>",
	Short: "Uniformly mark k sampled nodes matching --where into out-series",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, false, false)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		k, err := parseIntArg(args[1])
		if err != nil {
			fail(err)
			return nil
		}
		where, err := readWhere(cmd)
		if err != nil {
			fail(err)
			return nil
		}
		timer := metrics.NewTimer()
		err = h.g.SampleNodes(args[0], k, optionalSeed(cmd), where)
		timer.ObserveDurationVec(metrics.SampleDuration, "node")
		if err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{})
		return nil
	},
}

var selectSampleEdgesCmd = &cobra.Command{
	Use:   "select-sample-edges <k> <column...>",
	Short: "Sample k edges matching --where and return the requested columns",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, false, false)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		k, err := parseIntArg(args[0])
		if err != nil {
			fail(err)
			return nil
		}
		where, err := readWhere(cmd)
		if err != nil {
			fail(err)
			return nil
		}
		timer := metrics.NewTimer()
		rows, err := h.g.SelectSampleEdges(k, args[1:], optionalSeed(cmd), where)
		timer.ObserveDurationVec(metrics.SampleDuration, "edge")
		if err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{ReturnInfo: map[string]any{"rows": rows}})
		return nil
	},
}

var selectSampleNodesCmd = &cobra.Command{
	Use:   "select-sample-nodes <k> <column...>",
	Short: "Sample k nodes matching --where and return the requested columns",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, false, false)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		k, err := parseIntArg(args[0])
		if err != nil {
			fail(err)
			return nil
		}
		where, err := readWhere(cmd)
		if err != nil {
			fail(err)
			return nil
		}
		timer := metrics.NewTimer()
		rows, err := h.g.SelectSampleNodes(k, args[1:], optionalSeed(cmd), where)
		timer.ObserveDurationVec(metrics.SampleDuration, "node")
		if err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{ReturnInfo: map[string]any{"rows": rows}})
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{sampleEdgesCmd, sampleNodesCmd, selectSampleEdgesCmd, selectSampleNodesCmd} {
		c.Flags().Int64("seed", 0, "Deterministic RNG seed (omit for crypto-random seeding)")
		addWhereFlag(c)
	}
}
