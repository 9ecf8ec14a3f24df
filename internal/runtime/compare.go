package runtime

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/spf13/cast"
)

// toNumber accepts only values that are numbers already.
func toNumber(v any) (float64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		f, err := cast.ToFloat64E(v)
		return f, err == nil
	}
	return 0, false
}

// numericString converts form input such as " 42 " to a number.
func numericString(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(s))
	return f, err == nil
}

// numericPair coerces a and b to numbers when at least one is a number and the
// other is a number or a numeric string.
func numericPair(a, b any) (float64, float64, bool) {
	af, aNum := toNumber(a)
	bf, bNum := toNumber(b)
	switch {
	case aNum && bNum:
		return af, bf, true
	case aNum:
		bf, ok := numericString(b)
		return af, bf, ok
	case bNum:
		af, ok := numericString(a)
		return af, bf, ok
	}
	return 0, 0, false
}

func ordered(op domain.Operator, a, b any) bool {
	if af, bf, ok := numericPair(a, b); ok {
		switch op {
		case domain.OpGreater:
			return af > bf
		case domain.OpGreaterEqual:
			return af >= bf
		case domain.OpLess:
			return af < bf
		case domain.OpLessEqual:
			return af <= bf
		}
		return false
	}

	as, aStr := a.(string)
	bs, bStr := b.(string)
	if !aStr || !bStr {
		return false
	}
	switch op {
	case domain.OpGreater:
		return as > bs
	case domain.OpGreaterEqual:
		return as >= bs
	case domain.OpLess:
		return as < bs
	case domain.OpLessEqual:
		return as <= bs
	}
	return false
}

func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, bf, ok := numericPair(a, b); ok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aNum := toNumber(a)
	bf, bNum := toNumber(b)
	if aNum || bNum {
		return aNum && bNum && af == bf
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}
