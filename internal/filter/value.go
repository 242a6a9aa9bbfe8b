package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnknownField       = errors.New("unknown filter field")
	ErrOperatorNotAllowed = errors.New("operator not allowed for filter field")
	ErrMissingValue       = errors.New("filter value is missing or empty")
	ErrInvalidValue       = errors.New("filter value is invalid for field type")
)

// Value is one applied filter: field key + operator + typed value. Values are
// immutable once added to an engine; Label is derived for display.
type Value struct {
	Key      string   `json:"key"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
	Label    string   `json:"label"`
}

// dateLayouts are accepted when parsing date filter values.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// newValue validates and normalizes a raw filter value against its definition.
// The returned Value carries the coerced representation (float64 for numbers,
// bool for booleans, time.Time for dates) so evaluation never re-parses.
func newValue(def *Definition, op Operator, raw any) (Value, error) {
	if !def.Allows(op) {
		return Value{}, fmt.Errorf("%w: %s on %s", ErrOperatorNotAllowed, op, def.Key)
	}
	if isEmpty(raw) {
		return Value{}, fmt.Errorf("%w: %s", ErrMissingValue, def.Key)
	}

	normalized, err := normalize(def, op, raw)
	if err != nil {
		return Value{}, err
	}

	return Value{
		Key:      def.Key,
		Operator: op,
		Value:    normalized,
		Label:    buildLabel(def, op, normalized),
	}, nil
}

func isEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	}
	return false
}

func normalize(def *Definition, op Operator, raw any) (any, error) {
	if op == OpBetween {
		pair, ok := raw.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: between requires a [min, max] pair", ErrInvalidValue)
		}
		lo, err := normalizeScalar(def, pair[0])
		if err != nil {
			return nil, err
		}
		hi, err := normalizeScalar(def, pair[1])
		if err != nil {
			return nil, err
		}
		return []any{lo, hi}, nil
	}
	return normalizeScalar(def, raw)
}

func normalizeScalar(def *Definition, raw any) (any, error) {
	switch def.Type {
	case TypeNumber:
		n, ok := toNumber(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a number", ErrInvalidValue, def.Key)
		}
		return n, nil
	case TypeBoolean:
		b, ok := toBool(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a boolean", ErrInvalidValue, def.Key)
		}
		return b, nil
	case TypeDate:
		t, ok := toTime(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a date", ErrInvalidValue, def.Key)
		}
		return t, nil
	case TypeSelect:
		s, ok := toString(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects an option value", ErrInvalidValue, def.Key)
		}
		if !def.hasOption(s) {
			return nil, fmt.Errorf("%w: %q is not an option of %s", ErrInvalidValue, s, def.Key)
		}
		return s, nil
	default: // TypeText
		s, ok := toString(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects text", ErrInvalidValue, def.Key)
		}
		return s, nil
	}
}

var operatorLabels = map[Operator]string{
	OpEquals:      "is",
	OpContains:    "contains",
	OpStartsWith:  "starts with",
	OpEndsWith:    "ends with",
	OpGreaterThan: ">",
	OpLessThan:    "<",
	OpBetween:     "between",
	OpAfter:       "after",
	OpBefore:      "before",
}

func buildLabel(def *Definition, op Operator, value any) string {
	return fmt.Sprintf("%s %s %s", def.Label, operatorLabels[op], displayValue(def, value))
}

func displayValue(def *Definition, value any) string {
	switch v := value.(type) {
	case []any:
		return fmt.Sprintf("%s and %s", displayValue(def, v[0]), displayValue(def, v[1]))
	case time.Time:
		return v.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		if def.Type == TypeSelect {
			return def.optionLabel(v)
		}
		return fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("%v", value)
}
