package compiler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/waypoint/internal/dto"
	"github.com/aretw0/waypoint/pkg/dates"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// PredicateCompiler turns the source of an expression rule into a predicate.
type PredicateCompiler func(source any) (domain.Predicate, error)

// Expression languages a rule can use instead of a built-in operator.
const (
	LangExpr  = "expr"
	LangLogic = "logic"
)

// Parser converts YAML journey files into definitions.
type Parser struct {
	compilers map[string]PredicateCompiler
}

// NewParser creates a parser. compilers maps LangExpr / LangLogic to the
// compiler handling that rule key; rules using a missing language are rejected.
func NewParser(compilers map[string]PredicateCompiler) *Parser {
	return &Parser{compilers: compilers}
}

// Parse decodes data into a Definition.
func (p *Parser) Parse(data []byte) (*domain.Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}

	var file dto.Definition
	if err := decodeStrict(raw, &file); err != nil {
		return nil, &domain.ConfigError{Detail: "invalid definition", Err: err}
	}
	return p.Compile(&file)
}

// Compile converts the file representation into a Definition.
func (p *Parser) Compile(file *dto.Definition) (*domain.Definition, error) {
	def := &domain.Definition{
		Name:    file.Name,
		BaseURL: file.BaseURL,
		Fields:  file.Fields,
		Steps:   make([]domain.StepConfig, 0, len(file.Steps)),
	}

	seen := make(map[string]bool, len(file.Steps))
	for i, s := range file.Steps {
		if s.Route == "" {
			return nil, &domain.ConfigError{Detail: fmt.Sprintf("step #%d has no route", i+1)}
		}
		route := s.Route
		if !strings.HasPrefix(route, "/") {
			route = "/" + route
		}
		if seen[route] {
			return nil, &domain.ConfigError{Step: route, Detail: "duplicate route"}
		}
		seen[route] = true

		next, err := p.next(s.Next)
		if err != nil {
			return nil, &domain.ConfigError{Step: route, Detail: "invalid next", Err: err}
		}

		def.Steps = append(def.Steps, domain.StepConfig{
			Route:        route,
			EntryPoint:   s.EntryPoint,
			CheckJourney: s.CheckJourney,
			Prereqs:      s.Prereqs,
			Reset:        s.Reset,
			Skip:         s.Skip,
			Minor:        s.Minor,
			Editable:     s.Editable,
			EditSuffix:   s.EditSuffix,
			EditBackStep: s.EditBackStep,
			Fields:       s.Fields,
			Content:      s.Content,
			Next:         next,
		})
	}
	return def, nil
}

func (p *Parser) next(raw any) (domain.Next, error) {
	switch v := raw.(type) {
	case nil:
		return domain.Next{}, nil
	case string:
		return domain.To(v), nil
	case map[string]any:
		var rule dto.Rule
		if err := decodeStrict(v, &rule); err != nil {
			return domain.Next{}, err
		}
		if rule.Branch == "" {
			return domain.Next{}, fmt.Errorf("a map target needs 'branch', got %v", keys(v))
		}
		return domain.Next{FuncName: rule.Branch}, nil
	case []any:
		conds := make([]domain.Condition, 0, len(v))
		for i, item := range v {
			cond, err := p.rule(item)
			if err != nil {
				return domain.Next{}, fmt.Errorf("rule #%d: %w", i+1, err)
			}
			conds = append(conds, cond)
		}
		return domain.When(conds...), nil
	default:
		return domain.Next{}, fmt.Errorf("invalid next type: %T", v)
	}
}

func (p *Parser) rule(raw any) (domain.Condition, error) {
	switch v := raw.(type) {
	case string:
		return domain.Condition{Always: true, Next: domain.To(v)}, nil
	case map[string]any:
		var rule dto.Rule
		if err := decodeStrict(v, &rule); err != nil {
			return domain.Condition{}, err
		}
		return p.condition(rule)
	default:
		return domain.Condition{}, fmt.Errorf("invalid rule type: %T", v)
	}
}

func (p *Parser) condition(rule dto.Rule) (domain.Condition, error) {
	cond := domain.Condition{
		Value:          rule.Value,
		FnName:         rule.Fn,
		Redirect:       rule.Redirect,
		ContinueOnEdit: rule.ContinueOnEdit,
	}

	if rule.Branch != "" {
		if rule.Next != nil {
			return cond, fmt.Errorf("'branch' and 'next' are exclusive")
		}
		cond.Next = domain.Next{FuncName: rule.Branch}
	} else {
		next, err := p.next(rule.Next)
		if err != nil {
			return cond, err
		}
		cond.Next = next
	}

	field, err := selector(rule.Field)
	if err != nil {
		return cond, err
	}
	cond.Field = field

	overrides := 0
	for _, set := range []bool{rule.Fn != "", rule.Expr != "", rule.Logic != nil} {
		if set {
			overrides++
		}
	}
	if overrides > 1 {
		return cond, fmt.Errorf("'fn', 'expr' and 'logic' are exclusive")
	}

	switch {
	case rule.Expr != "":
		cond.OpFunc, err = p.compile(LangExpr, rule.Expr)
	case rule.Logic != nil:
		cond.OpFunc, err = p.compile(LangLogic, rule.Logic)
	}
	if err != nil {
		return cond, err
	}

	if rule.Op != "" {
		if cond.OpFunc != nil {
			return cond, fmt.Errorf("'op' cannot be combined with '%s'", exprKey(rule))
		}
		if op := domain.Operator(rule.Op); op.Valid() {
			cond.Op = op
		} else {
			cond.OpName = rule.Op
		}
	}

	switch {
	case cond.Op == domain.OpBefore || cond.Op == domain.OpAfter:
		cond.Value = dates.Normalize(cond.Value)
	default:
		if t, ok := cond.Value.(time.Time); ok {
			cond.Value = t.Format(dates.Layout)
		}
	}

	// A lone branch function is unconditional, like a bare path.
	if !cond.HasDiscriminant() && rule.Branch != "" {
		cond.Always = true
	}
	if !cond.HasDiscriminant() {
		return cond, fmt.Errorf("rule has nothing to test, use a bare path for an unconditional target")
	}
	return cond, nil
}

func (p *Parser) compile(lang string, source any) (domain.Predicate, error) {
	c, ok := p.compilers[lang]
	if !ok {
		return nil, fmt.Errorf("'%s' rules are not enabled", lang)
	}
	pred, err := c(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", lang, err)
	}
	return pred, nil
}

func selector(raw any) (domain.FieldSelector, error) {
	switch v := raw.(type) {
	case nil:
		return domain.FieldSelector{}, nil
	case string:
		return domain.Single(v), nil
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return domain.FieldSelector{}, fmt.Errorf("field list entries must be names, got %T", item)
			}
			names = append(names, name)
		}
		return domain.List(names...), nil
	case map[string]any:
		named := make(map[string]string, len(v))
		if err := mapstructure.Decode(v, &named); err != nil {
			return domain.FieldSelector{}, fmt.Errorf("invalid field map: %w", err)
		}
		return domain.Named(named), nil
	default:
		return domain.FieldSelector{}, fmt.Errorf("invalid field type: %T", v)
	}
}

func decodeStrict(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func exprKey(rule dto.Rule) string {
	if rule.Expr != "" {
		return LangExpr
	}
	return LangLogic
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
