package predicate

import "github.com/cuemby/shardgraph/internal/strtable"

// pval is the JSONLogic engine's own internal value representation (spec.md
// §9 "Variant vs. sum types"): unlike internal/value.Value, it admits
// arrays (needed for the `in` operator's right-hand side) but has no
// locator concept — strings are resolved to plain bytes at evaluation time
// via the shared strtable.Store.
type pkind uint8

const (
	pNull pkind = iota
	pBool
	pNum
	pStr
	pArr
)

type pval struct {
	kind   pkind
	num    float64
	str    string
	b      bool
	arr    []pval
	absent bool // true for a `var` lookup that found nothing
}

func absentVal() pval       { return pval{absent: true} }
func nullVal() pval         { return pval{kind: pNull} }
func boolVal(b bool) pval   { return pval{kind: pBool, b: b} }
func numVal(f float64) pval { return pval{kind: pNum, num: f} }
func strVal(s string) pval  { return pval{kind: pStr, str: s} }
func arrVal(vs []pval) pval { return pval{kind: pArr, arr: vs} }

// truthy implements JSONLogic's coercion-to-bool rule used by `not` and by
// `and`/`or` when an operand isn't already a bool: null/absent and zero
// values are falsy, everything else (including non-empty strings/arrays)
// is truthy.
func (v pval) truthy() bool {
	switch v.kind {
	case pNull:
		return false
	case pBool:
		return v.b
	case pNum:
		return v.num != 0
	case pStr:
		return v.str != ""
	case pArr:
		return len(v.arr) > 0
	default:
		return false
	}
}

// compare implements the comparison semantics of spec.md §4.6: absent
// never compares equal/less/greater to anything; numeric types widen to
// f64; numeric vs. string is always unequal/incomparable.
func compare(a, b pval) (lt, eq, comparable bool) {
	if a.absent || b.absent {
		return false, false, false
	}
	if a.kind == pStr && b.kind == pStr {
		return a.str < b.str, a.str == b.str, true
	}
	an, aok := asNum(a)
	bn, bok := asNum(b)
	if aok && bok {
		return an < bn, an == bn, true
	}
	if a.kind == pNull && b.kind == pNull {
		return false, true, true
	}
	return false, false, false
}

func asNum(v pval) (float64, bool) {
	switch v.kind {
	case pNum:
		return v.num, true
	case pBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// resolveString decodes an interned string locator to its bytes through
// strs, returning "" for a locator strs does not know.
func resolveString(strs *strtable.Store, loc uint64) string {
	b, ok := strs.Get(strtable.Locator(loc))
	if !ok {
		return ""
	}
	return string(b)
}
