package jsonlogic_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/jsonlogic"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	between := map[string]any{
		"and": []any{
			map[string]any{">=": []any{map[string]any{"var": "value"}, 18}},
			map[string]any{"<": []any{map[string]any{"var": "value"}, 65}},
		},
	}
	pred, err := jsonlogic.Compile(between)
	require.NoError(t, err)

	assert.True(t, pred(30, domain.Condition{}))
	assert.False(t, pred(12, domain.Condition{}))
	assert.False(t, pred(70, domain.Condition{}))
}

func TestCompile_RuleValue(t *testing.T) {
	pred, err := jsonlogic.Compile(`{"in": [{"var": "value"}, {"var": "rule"}]}`)
	require.NoError(t, err)

	cond := domain.Condition{Value: []any{"uk", "ie"}}
	assert.True(t, pred("uk", cond))
	assert.False(t, pred("fr", cond))
}

func TestCompile_Selections(t *testing.T) {
	pred, err := jsonlogic.Compile(`{"==": [{"var": "value.a"}, {"var": "value.b"}]}`)
	require.NoError(t, err)

	assert.True(t, pred(map[string]any{"a": "x", "b": "x"}, domain.Condition{}))
	assert.False(t, pred(map[string]any{"a": "x", "b": "y"}, domain.Condition{}))
}

func TestCompile_Invalid(t *testing.T) {
	_, err := jsonlogic.Compile("{not json")
	assert.Error(t, err)
}
