// Package registry maps names used in journey definitions to Go functions.
//
// Definitions refer to custom logic by name ("fn: isAdult", "op: withinRange",
// "next: summaryOrEdit"). The registry is consulted once, when a wizard is
// built, so an unknown name is reported before any request is served.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Registry manages the named functions available to a journey.
type Registry struct {
	mu         sync.RWMutex
	conditions map[string]domain.ConditionFunc
	predicates map[string]domain.Predicate
	branches   map[string]domain.BranchFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conditions: make(map[string]domain.ConditionFunc),
		predicates: make(map[string]domain.Predicate),
		branches:   make(map[string]domain.BranchFunc),
	}
}

// RegisterCondition adds a full-override condition ("fn").
// If a function with the same name exists, it is overwritten.
func (r *Registry) RegisterCondition(name string, fn domain.ConditionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conditions[name] = fn
}

// RegisterPredicate adds a custom operator ("op").
func (r *Registry) RegisterPredicate(name string, fn domain.Predicate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predicates[name] = fn
}

// RegisterBranch adds a function computing a next path.
func (r *Registry) RegisterBranch(name string, fn domain.BranchFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.branches[name] = fn
}

// Condition looks up a condition function.
func (r *Registry) Condition(name string) (domain.ConditionFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.conditions[name]
	if !ok {
		return nil, fmt.Errorf("condition function not found: %s", name)
	}
	return fn, nil
}

// Predicate looks up a custom operator.
func (r *Registry) Predicate(name string) (domain.Predicate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.predicates[name]
	if !ok {
		return nil, fmt.Errorf("operator function not found: %s", name)
	}
	return fn, nil
}

// Branch looks up a branch function.
func (r *Registry) Branch(name string) (domain.BranchFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.branches[name]
	if !ok {
		return nil, fmt.Errorf("branch function not found: %s", name)
	}
	return fn, nil
}

// Names lists every registered name, sorted, for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for n := range r.conditions {
		names = append(names, n)
	}
	for n := range r.predicates {
		names = append(names, n)
	}
	for n := range r.branches {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bind resolves every named function in next against the registry, returning
// a copy whose functions are set. The first unknown name aborts binding.
func (r *Registry) Bind(next domain.Next) (domain.Next, error) {
	if next.FuncName != "" && next.Func == nil {
		fn, err := r.Branch(next.FuncName)
		if err != nil {
			return next, err
		}
		next.Func = fn
	}
	if next.Conditions == nil {
		return next, nil
	}

	conds := make([]domain.Condition, len(next.Conditions))
	for i, c := range next.Conditions {
		if c.FnName != "" && c.Fn == nil {
			fn, err := r.Condition(c.FnName)
			if err != nil {
				return next, err
			}
			c.Fn = fn
		}
		if c.OpName != "" && c.OpFunc == nil {
			fn, err := r.Predicate(c.OpName)
			if err != nil {
				return next, err
			}
			c.OpFunc = fn
		}
		bound, err := r.Bind(c.Next)
		if err != nil {
			return next, err
		}
		c.Next = bound
		conds[i] = c
	}
	next.Conditions = conds
	return next, nil
}
