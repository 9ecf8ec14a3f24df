/*
Package waypoint drives multi-step, conditionally branching form journeys
("wizards") on top of per-user session state.

At each step the engine decides where the user goes next and refuses to show a
step the user has not legitimately reached. It keeps a journey log in the
session: one entry per completed step, recording the path, the resolved next
path and the fields that decided it. Changing an earlier answer so that the
journey branches differently drops the stale forward history.

# Concept

A Definition lists steps. Each step names its next step either literally or as
an ordered list of conditions where the first true one wins:

	def := &domain.Definition{
		Name:    "apply",
		BaseURL: "/apply",
		Steps: []domain.StepConfig{
			{Route: "/start", EntryPoint: true, Next: domain.To("age")},
			{Route: "/age", Fields: []string{"age"}, Next: domain.When(
				domain.Condition{Field: domain.Single("age"), Op: ">=", Value: 18, Next: domain.To("adult")},
				domain.Condition{Always: true, Next: domain.To("guardian")},
			)},
			{Route: "/adult"},
			{Route: "/guardian"},
		},
	}

Definitions can also be written in YAML (see package definition).

# Usage

Bind the definition once, then call CheckProgress when a step is shown and
Complete when it is submitted:

	wiz, err := waypoint.New(def, waypoint.WithRegistry(reg))
	if err != nil {
		log.Fatal(err) // unknown function names fail here
	}

	visit := wiz.Visit(session)
	if err := wiz.CheckProgress(ctx, "/age", visit); err != nil {
		var perr *domain.ProgressError
		if errors.As(err, &perr) {
			// redirect to perr.Redirect
		}
	}

	session.Set("age", 21)
	if _, err := wiz.Complete(ctx, "/age", visit, ""); err != nil {
		log.Fatal(err)
	}
	dest, _ := wiz.NextStep("/age", visit) // dest.Path == "/apply/adult"

The engine performs no I/O. Package adapters/http serves a wizard over HTTP,
and package session serializes concurrent access to persisted sessions.
*/
package waypoint
