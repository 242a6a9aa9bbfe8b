package filter

import (
	"fmt"
	"strings"

	"github.com/user/pagetable-service/internal/entity"
)

// Engine owns the ordered list of active filters for one pages table. Adds are
// validated against the catalog; invalid filters never enter the active list.
type Engine struct {
	catalog *Catalog
	active  []Value
}

// NewEngine creates an engine bound to a read-only filter catalog.
func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Add validates key/operator/value and appends the resulting filter to the
// active list. On any validation failure the list is left untouched.
func (e *Engine) Add(key string, op Operator, raw any) (Value, error) {
	def := e.catalog.Lookup(key)
	if def == nil {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	v, err := newValue(def, op, raw)
	if err != nil {
		return Value{}, err
	}
	e.active = append(e.active, v)
	return v, nil
}

// Remove deletes the filter at index i, preserving the order of the rest.
func (e *Engine) Remove(i int) bool {
	if i < 0 || i >= len(e.active) {
		return false
	}
	e.active = append(e.active[:i], e.active[i+1:]...)
	return true
}

// Clear drops all active filters.
func (e *Engine) Clear() {
	e.active = nil
}

// Values returns a copy of the active filter list in insertion order.
func (e *Engine) Values() []Value {
	out := make([]Value, len(e.active))
	copy(out, e.active)
	return out
}

// Matches evaluates the active list against a page: logical AND over all
// filters, true for an empty list.
func (e *Engine) Matches(p *entity.Page) bool {
	return Compile(e.catalog, e.active)(p)
}

// Apply returns the pages matching the active filter list, preserving order.
func (e *Engine) Apply(pages []*entity.Page) []*entity.Page {
	matches := Compile(e.catalog, e.active)
	out := make([]*entity.Page, 0, len(pages))
	for _, p := range pages {
		if matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Compile builds a pure predicate from a filter list: the logical AND of every
// filter, the identity predicate when the list is empty. Evaluation never
// panics on malformed row data; anything that cannot be coerced compares false.
func Compile(catalog *Catalog, values []Value) func(*entity.Page) bool {
	if len(values) == 0 {
		return func(*entity.Page) bool { return true }
	}
	return func(p *entity.Page) bool {
		for _, v := range values {
			def := catalog.Lookup(v.Key)
			acc := pageAccessors[v.Key]
			if def == nil || acc == nil {
				return false
			}
			if !evaluate(def, v, acc(p)) {
				return false
			}
		}
		return true
	}
}

func evaluate(def *Definition, v Value, field any) bool {
	switch v.Operator {
	case OpEquals:
		return evaluateEquals(def, v.Value, field)
	case OpContains, OpStartsWith, OpEndsWith:
		return evaluateSubstring(v.Operator, v.Value, field)
	case OpGreaterThan, OpLessThan:
		return evaluateOrdered(v.Operator, v.Value, field)
	case OpBetween:
		return evaluateBetween(def, v.Value, field)
	case OpAfter, OpBefore:
		return evaluateDate(v.Operator, v.Value, field)
	}
	return false
}

// evaluateEquals compares after coercing both sides to the field's declared
// type: numbers as numbers, booleans as booleans, everything else as strings.
func evaluateEquals(def *Definition, want, field any) bool {
	switch def.Type {
	case TypeNumber:
		w, ok1 := toNumber(want)
		f, ok2 := toNumber(field)
		return ok1 && ok2 && w == f
	case TypeBoolean:
		w, ok1 := toBool(want)
		f, ok2 := toBool(field)
		return ok1 && ok2 && w == f
	default:
		w, ok1 := toString(want)
		f, ok2 := toString(field)
		return ok1 && ok2 && w == f
	}
}

func evaluateSubstring(op Operator, want, field any) bool {
	w, ok1 := toString(want)
	f, ok2 := toString(field)
	if !ok1 || !ok2 {
		return false
	}
	w = strings.ToLower(w)
	f = strings.ToLower(f)
	switch op {
	case OpStartsWith:
		return strings.HasPrefix(f, w)
	case OpEndsWith:
		return strings.HasSuffix(f, w)
	default:
		return strings.Contains(f, w)
	}
}

func evaluateOrdered(op Operator, want, field any) bool {
	w, ok1 := toNumber(want)
	f, ok2 := toNumber(field)
	if !ok1 || !ok2 {
		return false
	}
	if op == OpGreaterThan {
		return f > w
	}
	return f < w
}

// evaluateBetween is inclusive on both bounds. A pair with min > max matches
// nothing.
func evaluateBetween(def *Definition, want, field any) bool {
	pair, ok := want.([]any)
	if !ok || len(pair) != 2 {
		return false
	}
	if def.Type == TypeDate {
		lo, ok1 := toTime(pair[0])
		hi, ok2 := toTime(pair[1])
		f, ok3 := toTime(field)
		return ok1 && ok2 && ok3 && !f.Before(lo) && !f.After(hi)
	}
	lo, ok1 := toNumber(pair[0])
	hi, ok2 := toNumber(pair[1])
	f, ok3 := toNumber(field)
	return ok1 && ok2 && ok3 && f >= lo && f <= hi
}

func evaluateDate(op Operator, want, field any) bool {
	w, ok1 := toTime(want)
	f, ok2 := toTime(field)
	if !ok1 || !ok2 {
		return false
	}
	if op == OpAfter {
		return f.After(w)
	}
	return f.Before(w)
}
