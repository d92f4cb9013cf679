package recordstore

import (
	"encoding/binary"
	"math"

	"github.com/cuemby/shardgraph/internal/value"
)

// encodeCell serializes a value.Value to a fixed 9-byte record (1 tag byte
// + 8 payload bytes) for write-through persistence in the cells bucket.
func encodeCell(v value.Value) []byte {
	out := make([]byte, 9)
	out[0] = byte(v.Tag())
	switch v.Tag() {
	case value.Bool:
		b, _ := v.Bool()
		if b {
			out[1] = 1
		}
	case value.I64:
		i, _ := v.I64()
		binary.BigEndian.PutUint64(out[1:], uint64(i))
	case value.U64:
		u, _ := v.U64()
		binary.BigEndian.PutUint64(out[1:], u)
	case value.F64:
		f, _ := v.F64()
		binary.BigEndian.PutUint64(out[1:], math.Float64bits(f))
	case value.Str:
		loc, _ := v.StrLocator()
		binary.BigEndian.PutUint64(out[1:], loc)
	case value.Arr:
		loc, _ := v.ArrLocator()
		binary.BigEndian.PutUint64(out[1:], loc)
	case value.Obj:
		loc, _ := v.ObjLocator()
		binary.BigEndian.PutUint64(out[1:], loc)
	}
	return out
}

func decodeCell(raw []byte) value.Value {
	if len(raw) < 9 {
		return value.Value{}
	}
	tag := value.Tag(raw[0])
	payload := binary.BigEndian.Uint64(raw[1:])
	switch tag {
	case value.Bool:
		return value.FromBool(payload != 0)
	case value.I64:
		return value.FromI64(int64(payload))
	case value.U64:
		return value.FromU64(payload)
	case value.F64:
		return value.FromF64(math.Float64frombits(payload))
	case value.Str:
		return value.FromStrLocator(payload)
	case value.Arr:
		return value.FromArrLocator(payload)
	case value.Obj:
		return value.FromObjLocator(payload)
	default:
		return value.Value{}
	}
}

func encodeID(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

func decodeID(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
