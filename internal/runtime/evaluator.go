package runtime

import (
	"fmt"
	"time"

	"github.com/aretw0/waypoint/pkg/dates"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Evaluator decides whether a single condition holds for the current field values.
type Evaluator struct {
	dates *dates.Parser
}

// NewEvaluator creates an evaluator. A nil parser uses the wall clock.
func NewEvaluator(parser *dates.Parser) *Evaluator {
	if parser == nil {
		parser = dates.NewParser()
	}
	return &Evaluator{dates: parser}
}

// Evaluate runs the condition. The only error is an unbound named function,
// which is a configuration defect.
func (ev *Evaluator) Evaluate(cond domain.Condition, values domain.FieldReader) (bool, error) {
	if cond.Always {
		return true, nil
	}
	if cond.Fn != nil {
		return cond.Fn(values, cond), nil
	}
	if cond.FnName != "" {
		return false, &domain.ConfigError{Detail: fmt.Sprintf("condition function '%s' is not bound", cond.FnName)}
	}
	if !cond.HasDiscriminant() {
		return false, nil
	}

	val := cond.Field.Extract(values)

	if cond.OpFunc != nil {
		return cond.OpFunc(val, cond), nil
	}
	if cond.OpName != "" {
		return false, &domain.ConfigError{Detail: fmt.Sprintf("operator function '%s' is not bound", cond.OpName)}
	}

	switch cond.Op {
	case domain.OpGreater, domain.OpGreaterEqual, domain.OpLess, domain.OpLessEqual:
		return ordered(cond.Op, val, cond.Value), nil
	case domain.OpEqual:
		return looseEqual(val, cond.Value), nil
	case domain.OpNotEqual:
		return !looseEqual(val, cond.Value), nil
	case domain.OpBefore, domain.OpAfter:
		return ev.compareDates(cond.Op, val, cond.Value), nil
	default:
		return strictEqual(val, cond.Value), nil
	}
}

func (ev *Evaluator) compareDates(op domain.Operator, val, ref any) bool {
	day, ok := ev.dates.ParseDay(val)
	if !ok {
		return false
	}
	if t, ok := ref.(time.Time); ok {
		limit, _ := ev.dates.ParseDay(t)
		return compareDay(op, day, limit)
	}
	var expr string
	switch v := ref.(type) {
	case nil:
	case string:
		expr = v
	default:
		expr = fmt.Sprint(v)
	}
	return compareDay(op, day, ev.dates.Decode(expr))
}

func compareDay(op domain.Operator, day, limit time.Time) bool {
	if op == domain.OpBefore {
		return day.Before(limit)
	}
	return day.After(limit)
}
