package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/cuemby/shardgraph/pkg/metrics"
)

var countCmd = &cobra.Command{
	Use:   "count <which>",
	Short: "Count nodes or edges matching --where, all-reduced across shards (which is 'node' or 'edge')",
	Args:  cobra.ExactArgs(1),
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
		n, err := h.g.Count(args[0], where)
		if err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{ReturnInfo: map[string]any{"count": n}})
		return nil
	},
}

// bucketOf renders v's histogram bucket label. With --bucket-size set and
// v numeric, it buckets into fixed-width numeric ranges; otherwise the
// rendered value's string form is its own bucket.
func bucketOf(bucketSize float64) func(v any) string {
	return func(v any) string {
		if bucketSize <= 0 {
			return fmt.Sprintf("%v", v)
		}
		var f float64
		switch t := v.(type) {
		case float64:
			f = t
		case int64:
			f = float64(t)
		default:
			return fmt.Sprintf("%v", v)
		}
		lo := math.Floor(f/bucketSize) * bucketSize
		return fmt.Sprintf("[%g, %g)", lo, lo+bucketSize)
	}
}

var histCmd = &cobra.Command{
	Use:   "hist <qname>",
	Short: "Histogram qname's values, all-reduced bucket-wise across shards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, false, false)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		bucketSize, _ := cmd.Flags().GetFloat64("bucket-size")
		where, err := readWhere(cmd)
		if err != nil {
			fail(err)
			return nil
		}
		buckets, err := h.g.Hist(args[0], where, bucketOf(bucketSize))
		if err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{ReturnInfo: map[string]any{"buckets": buckets}})
		return nil
	},
}

var kcoreCmd = &cobra.Command{
	Use:   "kcore <k> <marked-series>",
	Short: "Iteratively peel nodes below degree k, marking survivors in marked-series",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, true, false)
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
		rounds, err := h.g.KCore(int64(k), args[1], where)
		timer.ObserveDuration(metrics.KCoreDuration)
		metrics.KCoreRounds.Observe(float64(rounds))
		if err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{ReturnInfo: map[string]any{"rounds": rounds}})
		return nil
	},
}

var topkCmd = &cobra.Command{
	Use:   "topk <qname> <k>",
	Short: "Return the k rows with the largest qname value matching --where",
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
		rows, err := h.g.TopK(args[0], k, where)
		timer.ObserveDuration(metrics.TopKDuration)
		if err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{ReturnInfo: map[string]any{"rows": rows}})
		return nil
	},
}

func init() {
	addWhereFlag(countCmd)
	addWhereFlag(histCmd)
	histCmd.Flags().Float64("bucket-size", 0, "Fixed numeric bucket width; 0 buckets by exact rendered value")
	addWhereFlag(kcoreCmd)
	addWhereFlag(topkCmd)
}
