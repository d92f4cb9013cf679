/*
Package predicate compiles a JSONLogic-style rule tree (spec.md §3.8/§4.6)
into a row-level boolean predicate: a closure over a small set of named
columns, safe to evaluate on every row during iteration.

JSON parsing itself is treated as an external collaborator, per spec.md §1:
Compile uses encoding/json only to decode the rule document's generic
shape, not to interpret application data.
*/
package predicate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cuemby/shardgraph/internal/strtable"
	"github.com/cuemby/shardgraph/internal/value"
)

// node is one AST operator of spec.md §3.8.
type node interface {
	vars(set map[string]struct{})
	eval(row map[string]value.Value, strs *strtable.Store) pval
}

// Predicate is a compiled JSONLogic rule: a closure plus the variable list
// used by the iteration layer to know which columns to resolve per row
// (spec.md §4.5.1, §4.6).
type Predicate struct {
	root node
	vars []string
}

// Compile parses rule (a JSONLogic document) and lowers it to a Predicate.
func Compile(rule []byte) (*Predicate, error) {
	var doc any
	if err := json.Unmarshal(rule, &doc); err != nil {
		return nil, fmt.Errorf("predicate: invalid rule: %w", err)
	}
	n, err := build(doc)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	n.vars(set)
	vars := make([]string, 0, len(set))
	for v := range set {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	return &Predicate{root: n, vars: vars}, nil
}

// Vars lists every `var` name referenced anywhere in the compiled tree.
func (p *Predicate) Vars() []string { return p.vars }

// Eval evaluates the predicate against one row. row is a precomputed map,
// not a lazy callback: the caller reads each referenced column once per row
// (invariant 6, spec.md §8), and repeated `var` references within the same
// rule look up that same map entry rather than the column.
func (p *Predicate) Eval(row map[string]value.Value, strs *strtable.Store) bool {
	return p.root.eval(row, strs).truthy()
}

func build(doc any) (node, error) {
	switch d := doc.(type) {
	case nil:
		return literal{nullVal()}, nil
	case bool:
		return literal{boolVal(d)}, nil
	case float64:
		return literal{numVal(d)}, nil
	case string:
		return literal{strVal(d)}, nil
	case []any:
		items := make([]node, len(d))
		for i, el := range d {
			n, err := build(el)
			if err != nil {
				return nil, err
			}
			items[i] = n
		}
		return literalArray{items}, nil
	case map[string]any:
		if len(d) != 1 {
			return nil, fmt.Errorf("predicate: operator object must have exactly one key, got %d", len(d))
		}
		for op, args := range d {
			return buildOp(op, args)
		}
	}
	return nil, fmt.Errorf("predicate: unsupported rule shape %T", doc)
}

func buildOp(op string, args any) (node, error) {
	list, ok := args.([]any)
	if !ok {
		list = []any{args}
	}

	switch op {
	case "var":
		if len(list) == 0 {
			return nil, fmt.Errorf("predicate: var requires a name")
		}
		name, ok := list[0].(string)
		if !ok {
			return nil, fmt.Errorf("predicate: var name must be a string")
		}
		return varNode{name: name}, nil

	case "==", "!=", "<", "<=", ">", ">=":
		if len(list) != 2 {
			return nil, fmt.Errorf("predicate: %s requires exactly 2 operands", op)
		}
		left, err := build(list[0])
		if err != nil {
			return nil, err
		}
		right, err := build(list[1])
		if err != nil {
			return nil, err
		}
		return cmpNode{op: op, left: left, right: right}, nil

	case "and", "or":
		operands := make([]node, len(list))
		for i, el := range list {
			n, err := build(el)
			if err != nil {
				return nil, err
			}
			operands[i] = n
		}
		return boolNode{op: op, operands: operands}, nil

	case "not", "!":
		if len(list) != 1 {
			return nil, fmt.Errorf("predicate: not requires exactly 1 operand")
		}
		operand, err := build(list[0])
		if err != nil {
			return nil, err
		}
		return notNode{operand: operand}, nil

	case "in":
		if len(list) != 2 {
			return nil, fmt.Errorf("predicate: in requires exactly 2 operands")
		}
		needle, err := build(list[0])
		if err != nil {
			return nil, err
		}
		haystack, err := build(list[1])
		if err != nil {
			return nil, err
		}
		return inNode{needle: needle, haystack: haystack}, nil

	default:
		return nil, fmt.Errorf("predicate: unknown operator %q", op)
	}
}

// --- node implementations ---

type literal struct{ v pval }

func (l literal) vars(map[string]struct{}) {}
func (l literal) eval(map[string]value.Value, *strtable.Store) pval {
	return l.v
}

type literalArray struct{ items []node }

func (a literalArray) vars(set map[string]struct{}) {
	for _, it := range a.items {
		it.vars(set)
	}
}
func (a literalArray) eval(row map[string]value.Value, strs *strtable.Store) pval {
	out := make([]pval, len(a.items))
	for i, it := range a.items {
		out[i] = it.eval(row, strs)
	}
	return arrVal(out)
}

type varNode struct{ name string }

func (v varNode) vars(set map[string]struct{}) { set[v.name] = struct{}{} }

func (v varNode) eval(row map[string]value.Value, strs *strtable.Store) pval {
	cell, ok := row[v.name]
	if !ok {
		return absentVal()
	}
	return fromCellValue(cell, strs)
}

func fromCellValue(cell value.Value, strs *strtable.Store) pval {
	switch cell.Tag() {
	case value.Null:
		return nullVal()
	case value.Bool:
		b, _ := cell.Bool()
		return boolVal(b)
	case value.I64:
		i, _ := cell.I64()
		return numVal(float64(i))
	case value.U64:
		u, _ := cell.U64()
		return numVal(float64(u))
	case value.F64:
		f, _ := cell.F64()
		return numVal(f)
	case value.Str:
		loc, _ := cell.StrLocator()
		return strVal(resolveString(strs, loc))
	default:
		return absentVal()
	}
}

type cmpNode struct {
	op          string
	left, right node
}

func (c cmpNode) vars(set map[string]struct{}) {
	c.left.vars(set)
	c.right.vars(set)
}

func (c cmpNode) eval(row map[string]value.Value, strs *strtable.Store) pval {
	a := c.left.eval(row, strs)
	b := c.right.eval(row, strs)
	lt, eq, comparable := compare(a, b)
	if !comparable {
		return boolVal(false)
	}
	switch c.op {
	case "==":
		return boolVal(eq)
	case "!=":
		return boolVal(!eq)
	case "<":
		return boolVal(lt)
	case "<=":
		return boolVal(lt || eq)
	case ">":
		return boolVal(!lt && !eq)
	case ">=":
		return boolVal(!lt)
	default:
		return boolVal(false)
	}
}

type boolNode struct {
	op       string
	operands []node
}

func (n boolNode) vars(set map[string]struct{}) {
	for _, o := range n.operands {
		o.vars(set)
	}
}

func (n boolNode) eval(row map[string]value.Value, strs *strtable.Store) pval {
	if n.op == "and" {
		result := boolVal(true)
		for _, o := range n.operands {
			result = o.eval(row, strs)
			if !result.truthy() {
				return result
			}
		}
		return result
	}
	// or: short-circuits on the first truthy operand.
	result := boolVal(false)
	for _, o := range n.operands {
		result = o.eval(row, strs)
		if result.truthy() {
			return result
		}
	}
	return result
}

type notNode struct{ operand node }

func (n notNode) vars(set map[string]struct{}) { n.operand.vars(set) }

func (n notNode) eval(row map[string]value.Value, strs *strtable.Store) pval {
	return boolVal(!n.operand.eval(row, strs).truthy())
}

type inNode struct{ needle, haystack node }

func (n inNode) vars(set map[string]struct{}) {
	n.needle.vars(set)
	n.haystack.vars(set)
}

func (n inNode) eval(row map[string]value.Value, strs *strtable.Store) pval {
	needle := n.needle.eval(row, strs)
	hay := n.haystack.eval(row, strs)
	if hay.kind != pArr {
		return boolVal(false)
	}
	for _, el := range hay.arr {
		if _, eq, comparable := compare(needle, el); comparable && eq {
			return boolVal(true)
		}
	}
	return boolVal(false)
}
