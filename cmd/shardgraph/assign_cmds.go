package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/cuemby/shardgraph/internal/value"
)

var assignCmd = &cobra.Command{
	Use:   "assign <qname>",
	Short: "Set qname to --value on every row matching --where",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, false, false)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		typ, _ := cmd.Flags().GetString("type")
		raw, _ := cmd.Flags().GetString("value")
		v, err := parseScalarValue(typ, raw)
		if err != nil {
			fail(err)
			return nil
		}
		where, err := readWhere(cmd)
		if err != nil {
			fail(err)
			return nil
		}
		if err := h.g.Assign(args[0], v, where); err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{})
		return nil
	},
}

// addFakerCmd fills qname with independently drawn random values instead
// of one fixed value. Generators are plain math/rand, the same source
// sample.go's deterministic seeding already draws from.
var addFakerCmd = &cobra.Command{
	Use:   "add-faker <qname>",
	Short: "Fill qname with a random value per matching row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openGraph(cmd, false, false)
		if err != nil {
			fail(err)
			return nil
		}
		defer h.Close()

		typ, _ := cmd.Flags().GetString("type")
		min, _ := cmd.Flags().GetFloat64("min")
		max, _ := cmd.Flags().GetFloat64("max")
		where, err := readWhere(cmd)
		if err != nil {
			fail(err)
			return nil
		}

		tag, generator, err := fakerFor(typ, min, max)
		if err != nil {
			fail(err)
			return nil
		}
		if err := h.g.AddFakerSeries(args[0], tag, generator, where); err != nil {
			fail(err)
			return nil
		}
		emit(Envelope{})
		return nil
	},
}

func fakerFor(typ string, min, max float64) (value.Tag, func() value.Value, error) {
	switch typ {
	case "BOOL":
		return value.Bool, func() value.Value { return value.FromBool(rand.Intn(2) == 1) }, nil
	case "I64":
		return value.I64, func() value.Value {
			return value.FromI64(int64(min) + rand.Int63n(int64(max-min)+1))
		}, nil
	case "U64":
		return value.U64, func() value.Value {
			return value.FromU64(uint64(int64(min) + rand.Int63n(int64(max-min)+1)))
		}, nil
	case "F64":
		return value.F64, func() value.Value {
			return value.FromF64(min + rand.Float64()*(max-min))
		}, nil
	default:
		return value.Null, nil, fmt.Errorf("shardgraph: --type %q must be one of BOOL, I64, U64, F64", typ)
	}
}

func init() {
	assignCmd.Flags().String("type", "", "Value type: BOOL, I64, U64, F64")
	assignCmd.Flags().String("value", "", "Literal value to assign")
	assignCmd.MarkFlagRequired("type")
	assignCmd.MarkFlagRequired("value")
	addWhereFlag(assignCmd)

	addFakerCmd.Flags().String("type", "", "Value type: BOOL, I64, U64, F64")
	addFakerCmd.Flags().Float64("min", 0, "Lower bound for I64/U64/F64 generators")
	addFakerCmd.Flags().Float64("max", 1, "Upper bound for I64/U64/F64 generators")
	addFakerCmd.MarkFlagRequired("type")
	addWhereFlag(addFakerCmd)
}
