package filter

import "fmt"

// ValueType describes how a filterable field is typed and therefore which
// operators and value coercions apply to it.
type ValueType string

const (
	TypeText    ValueType = "text"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeDate    ValueType = "date"
	TypeSelect  ValueType = "select"
)

// Operator is one comparison a filter can apply to a field.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpContains    Operator = "contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpBetween     Operator = "between"
	OpAfter       Operator = "after"
	OpBefore      Operator = "before"
)

// operatorsForType is the full set of operators a value type may legally offer.
// A definition's allowed set must be a non-empty subset of its type's entry.
var operatorsForType = map[ValueType][]Operator{
	TypeText:    {OpEquals, OpContains, OpStartsWith, OpEndsWith},
	TypeNumber:  {OpEquals, OpGreaterThan, OpLessThan, OpBetween},
	TypeBoolean: {OpEquals},
	TypeDate:    {OpAfter, OpBefore, OpBetween},
	TypeSelect:  {OpEquals},
}

// Option is one fixed choice of a select-typed definition.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Definition is a static schema entry describing a filterable field, its type
// and the operators it may be filtered with.
type Definition struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Type      ValueType  `json:"type"`
	Operators []Operator `json:"operators"`
	Options   []Option   `json:"options,omitempty"`
}

// Allows reports whether op belongs to the definition's allowed operator set.
func (d *Definition) Allows(op Operator) bool {
	for _, o := range d.Operators {
		if o == op {
			return true
		}
	}
	return false
}

// optionLabel resolves a select option value to its display label.
// Falls back to the raw value for unknown options.
func (d *Definition) optionLabel(value string) string {
	for _, o := range d.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

// hasOption reports whether value is one of the definition's select options.
func (d *Definition) hasOption(value string) bool {
	for _, o := range d.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Catalog is an ordered, read-only set of filter definitions keyed for lookup.
type Catalog struct {
	defs  []Definition
	byKey map[string]*Definition
}

// NewCatalog builds a catalog from an ordered definition list. It rejects
// duplicate keys, empty operator sets and operators inconsistent with the
// definition's value type.
func NewCatalog(defs []Definition) (*Catalog, error) {
	c := &Catalog{
		defs:  defs,
		byKey: make(map[string]*Definition, len(defs)),
	}
	for i := range c.defs {
		d := &c.defs[i]
		if _, exists := c.byKey[d.Key]; exists {
			return nil, fmt.Errorf("duplicate filter definition key %q", d.Key)
		}
		if len(d.Operators) == 0 {
			return nil, fmt.Errorf("filter definition %q has no operators", d.Key)
		}
		legal, ok := operatorsForType[d.Type]
		if !ok {
			return nil, fmt.Errorf("filter definition %q has unknown type %q", d.Key, d.Type)
		}
		for _, op := range d.Operators {
			if !containsOperator(legal, op) {
				return nil, fmt.Errorf("filter definition %q: operator %q not valid for type %q", d.Key, op, d.Type)
			}
		}
		c.byKey[d.Key] = d
	}
	return c, nil
}

// Definitions returns the catalog entries in declaration order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup returns the definition for key, or nil when unknown.
func (c *Catalog) Lookup(key string) *Definition {
	return c.byKey[key]
}

func containsOperator(ops []Operator, op Operator) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}
