package runtime_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/dates"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock2020() time.Time {
	return time.Date(2020, 1, 1, 10, 30, 0, 0, time.UTC)
}

func newEvaluator() *runtime.Evaluator {
	return runtime.NewEvaluator(dates.NewParser(dates.WithClock(clock2020)))
}

func sessionWith(values map[string]any) *domain.Session {
	s := domain.NewSession("sess-1", "wizard")
	for k, v := range values {
		s.Set(k, v)
	}
	return s
}

func TestEvaluator_Operators(t *testing.T) {
	values := sessionWith(map[string]any{
		"age":     21,
		"score":   json.Number("7.5"),
		"name":    "bob",
		"count":   "10",
		"dob":     "2000-06-15",
		"started": "2019-12-31",
		"flag":    true,
		"signed":  time.Date(2019, 12, 31, 9, 0, 0, 0, time.UTC),
	})

	tests := []struct {
		name string
		cond domain.Condition
		want bool
	}{
		{"greater", domain.Condition{Field: domain.Single("age"), Op: ">", Value: 18}, true},
		{"greater false", domain.Condition{Field: domain.Single("age"), Op: ">", Value: 21}, false},
		{"greater equal", domain.Condition{Field: domain.Single("age"), Op: ">=", Value: 21}, true},
		{"less", domain.Condition{Field: domain.Single("age"), Op: "<", Value: 30.5}, true},
		{"less equal", domain.Condition{Field: domain.Single("age"), Op: "<=", Value: 20}, false},
		{"json number", domain.Condition{Field: domain.Single("score"), Op: ">", Value: 7}, true},
		{"numeric string vs number", domain.Condition{Field: domain.Single("count"), Op: ">", Value: 9}, true},
		{"strings compare lexically", domain.Condition{Field: domain.Single("name"), Op: "<", Value: "carol"}, true},
		{"non numeric string vs number", domain.Condition{Field: domain.Single("name"), Op: ">", Value: 1}, false},
		{"missing field never ordered", domain.Condition{Field: domain.Single("nope"), Op: ">", Value: 1}, false},
		{"loose equal coerces", domain.Condition{Field: domain.Single("count"), Op: "==", Value: 10}, true},
		{"loose not equal", domain.Condition{Field: domain.Single("name"), Op: "!=", Value: "alice"}, true},
		{"loose not equal same", domain.Condition{Field: domain.Single("name"), Op: "!=", Value: "bob"}, false},
		{"strict equal", domain.Condition{Field: domain.Single("name"), Value: "bob"}, true},
		{"strict equal no coercion", domain.Condition{Field: domain.Single("count"), Value: 10}, false},
		{"strict equal numbers across kinds", domain.Condition{Field: domain.Single("age"), Value: 21.0}, true},
		{"strict equal bool", domain.Condition{Field: domain.Single("flag"), Value: true}, true},
		{"unknown op falls back to strict", domain.Condition{Field: domain.Single("name"), Op: "~=", Value: "bob"}, true},
		{"before relative", domain.Condition{Field: domain.Single("dob"), Op: "before", Value: "18 years ago"}, true},
		{"after relative", domain.Condition{Field: domain.Single("dob"), Op: "after", Value: "18 years ago"}, false},
		{"before today", domain.Condition{Field: domain.Single("started"), Op: "before", Value: ""}, true},
		{"after absolute", domain.Condition{Field: domain.Single("started"), Op: "after", Value: "2019-12-30"}, true},
		{"same day is neither", domain.Condition{Field: domain.Single("started"), Op: "before", Value: "2019-12-31"}, false},
		{"malformed date value", domain.Condition{Field: domain.Single("name"), Op: "before", Value: "1 day"}, false},
		{"before time value", domain.Condition{Field: domain.Single("dob"), Op: "before", Value: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)}, true},
		{"after time value", domain.Condition{Field: domain.Single("dob"), Op: "after", Value: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)}, false},
		{"time field", domain.Condition{Field: domain.Single("signed"), Op: "after", Value: "2019-12-30"}, true},
		{"no discriminant", domain.Condition{}, false},
		{"value only without field", domain.Condition{Value: "bob"}, false},
		{"always", domain.Condition{Always: true}, true},
	}

	ev := newEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.Evaluate(tt.cond, values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluator_ExtractionShapes(t *testing.T) {
	values := sessionWith(map[string]any{"a": 1, "b": 2})
	var seen any
	capture := func(v any, _ domain.Condition) bool {
		seen = v
		return true
	}
	ev := newEvaluator()

	_, err := ev.Evaluate(domain.Condition{Field: domain.Single("a"), OpFunc: capture}, values)
	require.NoError(t, err)
	assert.Equal(t, 1, seen)

	_, err = ev.Evaluate(domain.Condition{Field: domain.List("a", "b"), OpFunc: capture}, values)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, seen)

	_, err = ev.Evaluate(domain.Condition{Field: domain.Named(map[string]string{"first": "a", "second": "b"}), OpFunc: capture}, values)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"first": 1, "second": 2}, seen)

	_, err = ev.Evaluate(domain.Condition{OpFunc: capture}, values)
	require.NoError(t, err)
	assert.Nil(t, seen)
}

func TestEvaluator_CustomFunctionsOverrideBuiltins(t *testing.T) {
	values := sessionWith(map[string]any{"age": 10})
	ev := newEvaluator()

	// The op function wins over the Value comparison.
	got, err := ev.Evaluate(domain.Condition{
		Field:  domain.Single("age"),
		Value:  10,
		OpFunc: func(v any, c domain.Condition) bool { return v != c.Value },
	}, values)
	require.NoError(t, err)
	assert.False(t, got)

	// fn bypasses extraction entirely and sees the raw reader.
	got, err = ev.Evaluate(domain.Condition{
		Field: domain.Single("missing"),
		Fn: func(r domain.FieldReader, _ domain.Condition) bool {
			return r.Get("age") == 10
		},
	}, values)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvaluator_UnboundNamesAreConfigErrors(t *testing.T) {
	ev := newEvaluator()
	values := sessionWith(nil)

	_, err := ev.Evaluate(domain.Condition{FnName: "isAdult"}, values)
	var cerr *domain.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), "isAdult")

	_, err = ev.Evaluate(domain.Condition{Field: domain.Single("a"), OpName: "between"}, values)
	require.ErrorAs(t, err, &cerr)
}
