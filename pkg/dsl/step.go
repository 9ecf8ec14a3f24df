package dsl

import "github.com/aretw0/waypoint/pkg/domain"

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step domain.StepConfig
}

// Entry lets the step be visited without history.
func (s *StepBuilder) Entry() *StepBuilder {
	s.step.EntryPoint = true
	return s
}

// Unchecked disables the progress guard for the step.
func (s *StepBuilder) Unchecked() *StepBuilder {
	off := false
	s.step.CheckJourney = &off
	return s
}

// Prereqs admits the step whenever any of the named steps is in the history.
func (s *StepBuilder) Prereqs(steps ...string) *StepBuilder {
	s.step.Prereqs = append(s.step.Prereqs, steps...)
	return s
}

// Reset clears the journey when the step is visited.
func (s *StepBuilder) Reset() *StepBuilder {
	s.step.Reset = true
	return s
}

// Skip marks the step as one that records no fields.
func (s *StepBuilder) Skip() *StepBuilder {
	s.step.Skip = true
	return s
}

// Minor marks the step's answers as not affecting the route.
func (s *StepBuilder) Minor() *StepBuilder {
	s.step.Minor = true
	return s
}

// Editable serves an edit flow for the step.
func (s *StepBuilder) Editable() *StepBuilder {
	s.step.Editable = true
	return s
}

// EditSuffix overrides the edit route suffix.
func (s *StepBuilder) EditSuffix(suffix string) *StepBuilder {
	s.step.Editable = true
	s.step.EditSuffix = suffix
	return s
}

// EditBack sets where an edit returns to.
func (s *StepBuilder) EditBack(step string) *StepBuilder {
	s.step.EditBackStep = step
	return s
}

// Fields sets the form fields collected by the step.
func (s *StepBuilder) Fields(names ...string) *StepBuilder {
	s.step.Fields = append(s.step.Fields, names...)
	return s
}

// Go sets an unconditional target, replacing any rules.
func (s *StepBuilder) Go(target string) *StepBuilder {
	s.step.Next = domain.To(target)
	return s
}

// Branch computes the target with a registered branch function.
func (s *StepBuilder) Branch(name string) *StepBuilder {
	s.step.Next = domain.Next{FuncName: name}
	return s
}

// If adds a rule comparing field with value; the first true rule wins.
func (s *StepBuilder) If(field string, op domain.Operator, value any, target string) *StepBuilder {
	return s.Rule(domain.Condition{Field: domain.Single(field), Op: op, Value: value, Next: domain.To(target)})
}

// Fn adds a rule decided by a registered condition function.
func (s *StepBuilder) Fn(name string, target string) *StepBuilder {
	return s.Rule(domain.Condition{FnName: name, Next: domain.To(target)})
}

// Otherwise adds an unconditional rule, usually last.
func (s *StepBuilder) Otherwise(target string) *StepBuilder {
	return s.Rule(domain.Condition{Always: true, Next: domain.To(target)})
}

// Rule appends a fully specified condition.
func (s *StepBuilder) Rule(c domain.Condition) *StepBuilder {
	s.step.Next.Path = ""
	s.step.Next.Func = nil
	s.step.Next.FuncName = ""
	s.step.Next.Conditions = append(s.step.Next.Conditions, c)
	return s
}

// Build returns the underlying step config.
func (s *StepBuilder) Build() domain.StepConfig {
	return s.step
}
