package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/aretw0/waypoint/pkg/dates"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Coerce converts value to the type or explains why it cannot.
	Coerce(value any) (any, error)
}

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Coerce(value any) (any, error) {
	switch value.(type) {
	case map[string]any, []any:
		return nil, fmt.Errorf("expected string, got %T", value)
	}
	return cast.ToStringE(value)
}

type intType struct{}

func (intType) Name() string { return "int" }

func (intType) Coerce(value any) (any, error) {
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	if f, ok := value.(float64); ok && f != float64(int64(f)) {
		return nil, fmt.Errorf("expected int, got float (not a whole number)")
	}
	i, err := cast.ToInt64E(value)
	if err != nil {
		return nil, fmt.Errorf("expected int, got %T", value)
	}
	return i, nil
}

type floatType struct{}

func (floatType) Name() string { return "float" }

func (floatType) Coerce(value any) (any, error) {
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return nil, fmt.Errorf("expected float, got %T", value)
	}
	return f, nil
}

type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Coerce(value any) (any, error) {
	if s, ok := value.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "yes":
			return true, nil
		case "off", "no":
			return false, nil
		}
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return nil, fmt.Errorf("expected bool, got %T", value)
	}
	return b, nil
}

// dateType keeps days as YYYY-MM-DD strings, the form the before and after
// operators read.
type dateType struct {
	parser *dates.Parser
}

func (dateType) Name() string { return "date" }

func (t dateType) Coerce(value any) (any, error) {
	if tm, ok := value.(time.Time); ok {
		return tm.Format(dates.Layout), nil
	}
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	day, ok := t.parser.ParseDay(value)
	if !ok {
		return nil, fmt.Errorf("expected date (%s), got %v", dates.Layout, value)
	}
	return day.Format(dates.Layout), nil
}

type sliceType struct {
	elem Type
}

func (t sliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elem.Name())
}

// Coerce accepts a single value as a one-element list, since a form with one
// checked box posts a scalar.
func (t sliceType) Coerce(value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		v, err := t.elem.Coerce(value)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, err := t.elem.Coerce(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

type customType struct {
	name   string
	coerce func(any) (any, error)
}

func (t customType) Name() string { return t.name }

func (t customType) Coerce(value any) (any, error) { return t.coerce(value) }

// String creates a string type.
func String() Type { return stringType{} }

// Int creates an integer type.
func Int() Type { return intType{} }

// Float creates a float type.
func Float() Type { return floatType{} }

// Bool creates a boolean type.
func Bool() Type { return boolType{} }

// Date creates a calendar day type.
func Date() Type { return dateType{parser: dates.NewParser()} }

// Slice creates a list type for elements of the given type.
func Slice(elem Type) Type { return sliceType{elem: elem} }

// Custom creates a named type from a conversion function.
func Custom(name string, coerce func(any) (any, error)) Type {
	return customType{name: name, coerce: coerce}
}

// ParseType converts a type name such as "int" or "[string]" to a Type.
func ParseType(typeStr string) (Type, error) {
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elem, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}

	switch typeStr {
	case "", "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "date":
		return Date(), nil
	}
	return nil, fmt.Errorf("unsupported type: %s", typeStr)
}
