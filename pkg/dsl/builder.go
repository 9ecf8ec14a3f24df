package dsl

import (
	"fmt"
	"path"

	"github.com/aretw0/waypoint/pkg/definition"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Builder manages the definition construction.
type Builder struct {
	def   domain.Definition
	order []string
	steps map[string]*StepBuilder
}

// New creates a builder for the wizard name served under base.
func New(name, base string) *Builder {
	return &Builder{
		def:   domain.Definition{Name: name, BaseURL: base},
		steps: make(map[string]*StepBuilder),
	}
}

// Field renames a field in the journey log.
func (b *Builder) Field(name, journeyKey string) *Builder {
	if b.def.Fields == nil {
		b.def.Fields = make(map[string]domain.FieldConfig)
	}
	b.def.Fields[name] = domain.FieldConfig{JourneyKey: journeyKey}
	return b
}

// Step returns the builder of route, creating it on first use. Steps keep
// the order they were first added in.
func (b *Builder) Step(route string) *StepBuilder {
	route = path.Join("/", route)
	if sb, ok := b.steps[route]; ok {
		return sb
	}
	sb := &StepBuilder{step: domain.StepConfig{Route: route}}
	b.steps[route] = sb
	b.order = append(b.order, route)
	return sb
}

// Build assembles and validates the definition.
func (b *Builder) Build() (*domain.Definition, error) {
	def := b.def
	def.Steps = make([]domain.StepConfig, 0, len(b.order))
	for _, route := range b.order {
		def.Steps = append(def.Steps, b.steps[route].Build())
	}
	if err := definition.Validate(&def); err != nil {
		return nil, fmt.Errorf("invalid definition %q: %w", def.Name, err)
	}
	return &def, nil
}
