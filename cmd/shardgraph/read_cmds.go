package main

import (
	"github.com/spf13/cobra"
)

var readVerticesCmd = &cobra.Command{
	Use:   "read-vertices <column...>",
	Short: "Project metadata columns for every node matching --where",
	Args:  cobra.MinimumNArgs(1),
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
		rows, err := h.g.ReadNodes(args, where)
		if err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{ReturnInfo: map[string]any{"rows": rows}})
		return nil
	},
}

var readEdgesCmd = &cobra.Command{
	Use:   "read-edges <column...>",
	Short: "Project metadata columns for every edge matching --where",
	Args:  cobra.MinimumNArgs(1),
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
		rows, err := h.g.ReadEdges(args, where)
		if err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{ReturnInfo: map[string]any{"rows": rows}})
		return nil
	},
}

func init() {
	addWhereFlag(readVerticesCmd)
	addWhereFlag(readEdgesCmd)
}
