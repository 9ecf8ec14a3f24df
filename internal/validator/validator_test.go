package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/waypoint/internal/validator"
	"github.com/aretw0/waypoint/pkg/domain"
)

func TestCrawl(t *testing.T) {
	def := &domain.Definition{Steps: []domain.StepConfig{
		{Route: "/start", EntryPoint: true, Next: domain.To("age")},
		{Route: "/age", Next: domain.When(
			domain.Condition{Field: domain.Single("age"), Op: domain.OpLess, Value: 0, Redirect: "help"},
			domain.Condition{Always: true, Next: domain.To("adult")},
		)},
		{Route: "/adult"},
		{Route: "/help", Next: domain.To("/elsewhere")},
		{Route: "/orphan", Next: domain.To("adult")},
		{Route: "/confirm", Prereqs: []string{"adult"}},
	}}

	r := validator.Crawl(def)
	assert.Equal(t, []string{"/orphan", "/confirm"}, r.Unreachable)
	assert.Equal(t, []string{"/adult"}, r.DeadEnds)
	assert.False(t, r.Dynamic)
}

func TestCrawl_Dynamic(t *testing.T) {
	def := &domain.Definition{Steps: []domain.StepConfig{
		{Route: "/start", EntryPoint: true, Next: domain.Next{FuncName: "route"}},
		{Route: "/maybe"},
	}}

	r := validator.Crawl(def)
	assert.True(t, r.Dynamic)
	assert.Equal(t, []string{"/maybe"}, r.Unreachable)
}
