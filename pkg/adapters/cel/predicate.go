// Package cel compiles CEL expressions into journey predicates.
//
// An expression sees two variables: value, the field value(s) extracted by the
// rule's selector, and rule, the rule's own Value. For example:
//
//	- field: [income, outgoings]
//	  expr: value.income - value.outgoings > rule
//	  value: 1000
//	  next: affordable
package cel

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/google/cel-go/cel"
)

// costLimit bounds the work of a single evaluation.
const costLimit = 1000000

// Compiler compiles expressions against a shared environment.
type Compiler struct {
	env *cel.Env
}

// NewCompiler creates the CEL environment.
func NewCompiler() (*Compiler, error) {
	env, err := cel.NewEnv(
		cel.Variable("value", cel.DynType),
		cel.Variable("rule", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Compiler{env: env}, nil
}

// Compile parses and checks source, which must be a string expression
// evaluating to a bool.
func (c *Compiler) Compile(source any) (domain.Predicate, error) {
	expr, ok := source.(string)
	if !ok {
		return nil, fmt.Errorf("expression must be a string, got %T", source)
	}

	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", t)
	}

	prog, err := c.env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}

	// Evaluation errors (missing keys, type mismatches) count as no match.
	return func(value any, cond domain.Condition) bool {
		out, _, err := prog.Eval(map[string]any{
			"value": normalize(value),
			"rule":  normalize(cond.Value),
		})
		if err != nil {
			return false
		}
		matched, ok := out.Value().(bool)
		return ok && matched
	}, nil
}

// normalize converts values decoded from forms or JSON into types the CEL
// runtime adapts natively.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	}
	return v
}
