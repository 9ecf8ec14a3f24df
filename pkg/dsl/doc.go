/*
Package dsl builds wizard definitions in Go instead of YAML.

The fluent builder covers the same ground as a definition file and checks the
result with definition.Validate, so typos in targets or prereqs surface at
Build time rather than on the first request.

Example usage:

	b := dsl.New("apply", "/apply")
	b.Field("age", "applicantAge")

	b.Step("/start").Entry().Go("age")
	b.Step("/age").Fields("age").
		If("age", domain.OpGreaterEqual, 18, "adult").
		Otherwise("guardian")
	b.Step("/adult").Editable().Go("confirm")
	b.Step("/guardian").Minor().Go("confirm")
	b.Step("/confirm").Prereqs("adult", "guardian")

	def, err := b.Build()
	// ... pass def to waypoint.New(...)
*/
package dsl
