package runtime

import (
	"fmt"
	"path"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Resolver walks a branching specification and picks the next path.
type Resolver struct {
	evaluator *Evaluator
}

// NewResolver creates a resolver on top of an evaluator.
func NewResolver(evaluator *Evaluator) *Resolver {
	return &Resolver{evaluator: evaluator}
}

// Resolve evaluates conditions in order, first match wins, descending into the
// winner's Next as long as it is itself a list of conditions. Fields of every
// evaluated condition are reported, winning or not.
func (r *Resolver) Resolve(next domain.Next, values domain.FieldReader) (domain.NextStepResult, error) {
	fields := newFieldSet()
	var winner *domain.Condition

	current := next
	for current.IsConditional() {
		conds := current.Conditions
		current = domain.Next{}

		for i := range conds {
			cond := conds[i]
			if cond.Always {
				current = cond.Next
				break
			}

			fields.add(cond.Field.Names()...)

			ok, err := r.evaluator.Evaluate(cond, values)
			if err != nil {
				return domain.NextStepResult{}, err
			}
			if ok {
				current = cond.Next
				winner = &cond
				break
			}
		}
	}

	url := current.Path
	switch {
	case current.Func != nil:
		url = current.Func(winner)
	case current.FuncName != "":
		return domain.NextStepResult{}, &domain.ConfigError{
			Detail: fmt.Sprintf("branch function '%s' is not bound", current.FuncName),
		}
	}

	return domain.NextStepResult{
		URL:       url,
		Condition: winner,
		Fields:    fields.list(),
	}, nil
}

// ResolvePath turns target into an absolute path under base. Absolute targets
// are kept as they are unless self is set, in which case target is always
// treated as relative to base (a step's own route).
func ResolvePath(base, target string, self bool) string {
	if !self && strings.HasPrefix(target, "/") {
		return target
	}
	return path.Join("/", base, target)
}

type fieldSet struct {
	seen  map[string]bool
	names []string
}

func newFieldSet() *fieldSet {
	return &fieldSet{seen: make(map[string]bool), names: []string{}}
}

func (s *fieldSet) add(names ...string) {
	for _, n := range names {
		if n == "" || s.seen[n] {
			continue
		}
		s.seen[n] = true
		s.names = append(s.names, n)
	}
}

func (s *fieldSet) list() []string {
	return s.names
}
