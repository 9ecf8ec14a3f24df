package runtime_test

import (
	"testing"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eq(field string, value any, next domain.Next) domain.Condition {
	return domain.Condition{Field: domain.Single(field), Value: value, Next: next}
}

func TestResolver_Resolve(t *testing.T) {
	values := sessionWith(map[string]any{"a": 1, "b": 2, "c": 3})
	r := runtime.NewResolver(newEvaluator())

	tests := []struct {
		name       string
		next       domain.Next
		wantURL    string
		wantFields []string
		wantCond   bool
	}{
		{
			name:       "literal path",
			next:       domain.To("nextstep"),
			wantURL:    "nextstep",
			wantFields: []string{},
		},
		{
			name:       "empty list",
			next:       domain.When(),
			wantURL:    "",
			wantFields: []string{},
		},
		{
			name:       "no match",
			next:       domain.When(eq("a", 9, domain.To("x")), eq("b", 9, domain.To("y"))),
			wantURL:    "",
			wantFields: []string{"a", "b"},
		},
		{
			name: "first match wins",
			next: domain.When(
				eq("a", 0, domain.To("zero")),
				eq("b", 2, domain.To("two")),
				eq("c", 3, domain.To("three")),
			),
			wantURL:    "two",
			wantFields: []string{"a", "b"},
			wantCond:   true,
		},
		{
			name: "unconditional entry",
			next: domain.When(
				eq("a", 0, domain.To("zero")),
				domain.Condition{Always: true, Next: domain.To("fallback")},
				eq("c", 3, domain.To("three")),
			),
			wantURL:    "fallback",
			wantFields: []string{"a"},
		},
		{
			name: "nested lists",
			next: domain.When(
				eq("a", 1, domain.When(
					eq("b", 0, domain.To("inner-miss")),
					eq("c", 3, domain.When(
						eq("a", 1, domain.To("deep")),
					)),
				)),
				eq("a", 1, domain.To("never")),
			),
			wantURL:    "deep",
			wantFields: []string{"a", "b", "c"},
			wantCond:   true,
		},
		{
			name: "fields of every evaluated rule are deduplicated",
			next: domain.When(
				domain.Condition{Field: domain.List("a", "b"), Value: "x", Next: domain.To("x")},
				domain.Condition{Field: domain.Named(map[string]string{"k": "b", "l": "c"}), Op: "!=", Value: nil, Next: domain.To("y")},
			),
			wantURL:    "y",
			wantFields: []string{"a", "b", "c"},
			wantCond:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Resolve(tt.next, values)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, res.URL)
			assert.Equal(t, tt.wantFields, res.Fields)
			assert.Equal(t, tt.wantCond, res.Condition != nil)
		})
	}
}

func TestResolver_FirstMatchAcrossNesting(t *testing.T) {
	// A later top-level rule must not override a winner whose nested list has no match.
	values := sessionWith(map[string]any{"a": 1})
	r := runtime.NewResolver(newEvaluator())

	res, err := r.Resolve(domain.When(
		eq("a", 1, domain.When(eq("a", 2, domain.To("inner")))),
		eq("a", 1, domain.To("later")),
	), values)
	require.NoError(t, err)
	assert.Equal(t, "", res.URL)
	require.NotNil(t, res.Condition)
	assert.Equal(t, 1, res.Condition.Value)
}

func TestResolver_BranchFunction(t *testing.T) {
	values := sessionWith(map[string]any{"a": 1})
	r := runtime.NewResolver(newEvaluator())

	var got *domain.Condition
	fn := func(c *domain.Condition) string {
		got = c
		return "computed"
	}

	res, err := r.Resolve(domain.When(
		domain.Condition{Field: domain.Single("a"), Value: 1, Redirect: "/r", Next: domain.Next{Func: fn}},
	), values)
	require.NoError(t, err)
	assert.Equal(t, "computed", res.URL)
	require.NotNil(t, got)
	assert.Equal(t, "/r", got.Redirect)

	res, err = r.Resolve(domain.Next{Func: fn}, values)
	require.NoError(t, err)
	assert.Equal(t, "computed", res.URL)
	assert.Nil(t, got)
	assert.Nil(t, res.Condition)
}

func TestResolver_UnboundNamesFailFast(t *testing.T) {
	values := sessionWith(nil)
	r := runtime.NewResolver(newEvaluator())

	_, err := r.Resolve(domain.When(domain.Condition{FnName: "missing", Next: domain.To("x")}), values)
	var cerr *domain.ConfigError
	assert.ErrorAs(t, err, &cerr)

	_, err = r.Resolve(domain.Next{FuncName: "missing"}, values)
	assert.ErrorAs(t, err, &cerr)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/base/nextstep", runtime.ResolvePath("/base", "nextstep", false))
	assert.Equal(t, "/other/step", runtime.ResolvePath("/base", "/other/step", false))
	assert.Equal(t, "/base/teststep", runtime.ResolvePath("/base", "/teststep", true))
	assert.Equal(t, "/base/custom/route", runtime.ResolvePath("/base", "/custom/route", true))
	assert.Equal(t, "/step", runtime.ResolvePath("", "step", false))
	assert.Equal(t, "/base", runtime.ResolvePath("/base/", "", true))
}
