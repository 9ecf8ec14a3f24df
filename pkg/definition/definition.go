// Package definition loads journey definitions from YAML.
//
// A definition lists its steps in order. A step's next is a path relative to
// the base URL, a {branch: name} map naming a registered branch function, or
// a list of rules where the first match wins:
//
//	name: apply
//	baseURL: /apply
//	fields:
//	  age: {journeyKey: applicantAge}
//	steps:
//	  - route: /start
//	    entryPoint: true
//	    next: age
//	  - route: /age
//	    fields: [age]
//	    next:
//	      - {field: age, op: ">=", value: 18, next: adult}
//	      - guardian
//
// Rules may also use fn (a registered condition), a registered predicate
// name as op, expr (CEL) or logic (JSONLogic) when the matching compiler is
// enabled with WithCompiler.
package definition

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/waypoint/internal/compiler"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Rule keys served by expression compilers.
const (
	LangExpr  = compiler.LangExpr
	LangLogic = compiler.LangLogic
)

// Compiler turns the source of an expression rule into a predicate.
type Compiler = compiler.PredicateCompiler

type options struct {
	compilers map[string]compiler.PredicateCompiler
}

// Option configures parsing.
type Option func(*options)

// WithCompiler enables rules written in lang (LangExpr or LangLogic).
func WithCompiler(lang string, c Compiler) Option {
	return func(o *options) {
		o.compilers[lang] = c
	}
}

// Parse decodes a YAML definition.
func Parse(data []byte, opts ...Option) (*domain.Definition, error) {
	o := options{compilers: make(map[string]compiler.PredicateCompiler)}
	for _, opt := range opts {
		opt(&o)
	}
	return compiler.NewParser(o.compilers).Parse(data)
}

// Load reads and parses the definition at path.
func Load(path string, opts ...Option) (*domain.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	def, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Validate reports structural problems that parsing alone does not catch:
// no entry point, duplicate routes, unknown operators, and relative targets
// or prereqs naming steps that do not exist. All problems are joined.
func Validate(def *domain.Definition) error {
	var errs []error
	if len(def.EntryPoints()) == 0 {
		errs = append(errs, &domain.ConfigError{Detail: "no entry point"})
	}

	routes := make(map[string]bool, len(def.Steps))
	for _, s := range def.Steps {
		if routes[s.Route] {
			errs = append(errs, &domain.ConfigError{Step: s.Route, Detail: "duplicate route"})
		}
		routes[s.Route] = true
	}

	for _, s := range def.Steps {
		for _, p := range s.Prereqs {
			if !known(routes, p) {
				errs = append(errs, &domain.ConfigError{Step: s.Route, Detail: fmt.Sprintf("unknown prereq '%s'", p)})
			}
		}
		walk(s.Next, func(n domain.Next) {
			if n.Path != "" && !known(routes, n.Path) {
				errs = append(errs, &domain.ConfigError{Step: s.Route, Detail: fmt.Sprintf("unknown target '%s'", n.Path)})
			}
			for _, c := range n.Conditions {
				if !c.Op.Valid() {
					errs = append(errs, &domain.ConfigError{Step: s.Route, Detail: fmt.Sprintf("unknown operator '%s'", c.Op)})
				}
			}
		})
	}
	return errors.Join(errs...)
}

// known reports whether a relative name matches a route. Absolute paths may
// leave the wizard and are accepted as is.
func known(routes map[string]bool, target string) bool {
	if strings.HasPrefix(target, "/") {
		return true
	}
	return routes["/"+target]
}

// walk visits n and every nested target.
func walk(n domain.Next, fn func(domain.Next)) {
	fn(n)
	for _, c := range n.Conditions {
		walk(c.Next, fn)
	}
}
