// Package validator crawls a definition the way a user would walk it.
package validator

import (
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Report is the outcome of a crawl.
type Report struct {
	// Unreachable lists steps no entry point leads to, in definition order.
	Unreachable []string
	// Dynamic is set when a visited step computes its target at runtime, in
	// which case Unreachable may include steps that are in fact reachable.
	Dynamic bool
	// DeadEnds lists visited steps without a target that are not the last
	// step of a journey: they have no Next yet other steps list them as prereqs.
	DeadEnds []string
}

// Crawl walks def from its entry points over every relative branch target,
// including rule redirects.
func Crawl(def *domain.Definition) Report {
	var r Report
	visited := make(map[string]bool, len(def.Steps))

	var queue []string
	for _, route := range def.EntryPoints() {
		queue = append(queue, route)
		visited[route] = true
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		step, ok := def.Step(current)
		if !ok {
			continue
		}
		targets(step.Next, &r.Dynamic, func(target string) {
			route := "/" + target
			if _, ok := def.Step(route); ok && !visited[route] {
				visited[route] = true
				queue = append(queue, route)
			}
		})
	}

	needed := make(map[string]bool)
	for _, s := range def.Steps {
		for _, p := range s.Prereqs {
			needed["/"+strings.TrimPrefix(p, "/")] = true
		}
	}

	for _, s := range def.Steps {
		if !visited[s.Route] {
			r.Unreachable = append(r.Unreachable, s.Route)
			continue
		}
		if s.Next.IsZero() && needed[s.Route] {
			r.DeadEnds = append(r.DeadEnds, s.Route)
		}
	}
	return r
}

// targets reports every relative target of n. Absolute paths leave the wizard.
func targets(n domain.Next, dynamic *bool, fn func(string)) {
	if n.Func != nil || n.FuncName != "" {
		*dynamic = true
	}
	if n.Path != "" && !strings.HasPrefix(n.Path, "/") {
		fn(n.Path)
	}
	for _, c := range n.Conditions {
		if c.Redirect != "" && !strings.HasPrefix(c.Redirect, "/") {
			fn(c.Redirect)
		}
		targets(c.Next, dynamic, fn)
	}
}
