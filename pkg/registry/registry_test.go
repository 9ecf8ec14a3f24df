package registry_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Bind(t *testing.T) {
	reg := registry.NewRegistry()
	reg.RegisterCondition("always", func(domain.FieldReader, domain.Condition) bool { return true })
	reg.RegisterPredicate("even", func(v any, _ domain.Condition) bool {
		n, ok := v.(int)
		return ok && n%2 == 0
	})
	reg.RegisterBranch("summary", func(*domain.Condition) string { return "summary" })

	next := domain.When(
		domain.Condition{FnName: "always", Next: domain.When(
			domain.Condition{Field: domain.Single("n"), OpName: "even", Next: domain.Next{FuncName: "summary"}},
		)},
	)

	bound, err := reg.Bind(next)
	require.NoError(t, err)

	outer := bound.Conditions[0]
	assert.NotNil(t, outer.Fn)
	inner := outer.Next.Conditions[0]
	assert.NotNil(t, inner.OpFunc)
	assert.NotNil(t, inner.Next.Func)
	assert.Equal(t, "summary", inner.Next.Func(nil))

	// The original is left untouched.
	assert.Nil(t, next.Conditions[0].Fn)
}

func TestRegistry_Bind_UnknownName(t *testing.T) {
	reg := registry.NewRegistry()

	_, err := reg.Bind(domain.When(domain.Condition{FnName: "missing"}))
	assert.ErrorContains(t, err, "condition function not found: missing")

	_, err = reg.Bind(domain.When(domain.Condition{Field: domain.Single("a"), OpName: "nope"}))
	assert.ErrorContains(t, err, "operator function not found: nope")

	_, err = reg.Bind(domain.Next{FuncName: "gone"})
	assert.ErrorContains(t, err, "branch function not found: gone")
}

func TestRegistry_Names(t *testing.T) {
	reg := registry.NewRegistry()
	reg.RegisterBranch("b", func(*domain.Condition) string { return "" })
	reg.RegisterCondition("a", func(domain.FieldReader, domain.Condition) bool { return false })
	assert.Equal(t, []string{"a", "b"}, reg.Names())
}
