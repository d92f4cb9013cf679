package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuemby/shardgraph/pkg/metrics"
)

var nhopsCmd = &cobra.Command{
	Use:   "nhops <out-series> <k> <seed-id...>",
	Short: "Mark the hop distance of every node reachable within k hops of the given seeds",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, true, false)
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
		err = h.g.NHops(args[0], k, args[2:], where)
		timer.ObserveDuration(metrics.NHopsDuration)
		if err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{})
		return nil
	},
}

var degreesCmd = &cobra.Command{
	Use:   "degrees <in-series> <out-series>",
	Short: "Write in-degree into in-series and out-degree into out-series for every node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, true, false)
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

		var opErr error
		switch {
		case args[0] == "-" || strings.TrimSpace(args[0]) == "":
			opErr = h.g.OutDegree(args[1], where)
		case args[1] == "-" || strings.TrimSpace(args[1]) == "":
			opErr = h.g.InDegree(args[0], where)
		default:
			opErr = h.g.Degrees(args[0], args[1], where)
		}
		if opErr != nil {
			fail(opErr)
			return nil
		}
		emit(Envelope{})
		return nil
	},
}

func init() {
	addWhereFlag(nhopsCmd)
	addWhereFlag(degreesCmd)
}
