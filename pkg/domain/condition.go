package domain

import (
	"fmt"
	"sort"
	"strings"
)

// FieldReader exposes the session field values a condition can look at.
type FieldReader interface {
	Get(name string) any
}

// Operator is a built-in comparison between a field value and Condition.Value.
type Operator string

const (
	OpNone         Operator = ""
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpBefore       Operator = "before"
	OpAfter        Operator = "after"
)

// Valid reports whether op is a known operator. OpNone is valid (strict equality).
func (op Operator) Valid() bool {
	switch op {
	case OpNone, OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpEqual, OpNotEqual, OpBefore, OpAfter:
		return true
	}
	return false
}

// SelectorKind tags the shape of a FieldSelector.
type SelectorKind int

const (
	SelectNone SelectorKind = iota
	SelectSingle
	SelectList
	SelectNamed
)

// FieldSelector chooses which session values a condition compares.
//
//   - Single: the value of one field.
//   - List: a map of field name to value for each listed field.
//   - Named: a map of output key to the value of the mapped field.
type FieldSelector struct {
	Kind  SelectorKind
	Name  string
	List  []string
	Named map[string]string
}

// Single selects one field.
func Single(name string) FieldSelector {
	return FieldSelector{Kind: SelectSingle, Name: name}
}

// List selects several fields keyed by their own names.
func List(names ...string) FieldSelector {
	return FieldSelector{Kind: SelectList, List: names}
}

// Named selects fields under caller-chosen keys (output key -> field name).
func Named(m map[string]string) FieldSelector {
	return FieldSelector{Kind: SelectNamed, Named: m}
}

// IsZero reports whether the selector selects nothing.
func (s FieldSelector) IsZero() bool {
	return s.Kind == SelectNone
}

// Extract reads the selected value(s) from values.
func (s FieldSelector) Extract(values FieldReader) any {
	switch s.Kind {
	case SelectSingle:
		return values.Get(s.Name)
	case SelectList:
		out := make(map[string]any, len(s.List))
		for _, name := range s.List {
			out[name] = values.Get(name)
		}
		return out
	case SelectNamed:
		out := make(map[string]any, len(s.Named))
		for key, field := range s.Named {
			out[key] = values.Get(field)
		}
		return out
	}
	return nil
}

// Names returns the referenced field names. Named selectors are returned in
// output-key order so provenance is stable.
func (s FieldSelector) Names() []string {
	switch s.Kind {
	case SelectSingle:
		if s.Name == "" {
			return nil
		}
		return []string{s.Name}
	case SelectList:
		return append([]string(nil), s.List...)
	case SelectNamed:
		keys := make([]string, 0, len(s.Named))
		for k := range s.Named {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		names := make([]string, 0, len(keys))
		for _, k := range keys {
			names = append(names, s.Named[k])
		}
		return names
	}
	return nil
}

func (s FieldSelector) String() string {
	switch s.Kind {
	case SelectSingle:
		return s.Name
	case SelectList, SelectNamed:
		return "[" + strings.Join(s.Names(), ",") + "]"
	}
	return ""
}

// Predicate is a custom comparison. It receives the extracted field value.
type Predicate func(value any, cond Condition) bool

// ConditionFunc replaces the whole evaluation of a condition, extraction included.
type ConditionFunc func(values FieldReader, cond Condition) bool

// BranchFunc computes a path from the winning condition (nil when unconditional).
type BranchFunc func(cond *Condition) string

// Condition is a single rule of a branching specification.
type Condition struct {
	Field FieldSelector

	Op     Operator
	OpFunc Predicate
	OpName string

	Value any

	Fn     ConditionFunc
	FnName string

	// Always marks an unconditional entry (a bare path or function in a list).
	Always bool

	Next           Next
	Redirect       string
	ContinueOnEdit bool
}

// HasDiscriminant reports whether the condition has anything to evaluate.
func (c Condition) HasDiscriminant() bool {
	return c.Always || !c.Field.IsZero() || c.Op != OpNone || c.OpFunc != nil ||
		c.OpName != "" || c.Value != nil || c.Fn != nil || c.FnName != ""
}

func (c Condition) String() string {
	switch {
	case c.Always:
		return "always"
	case c.FnName != "":
		return c.FnName + "()"
	case c.Fn != nil:
		return "fn()"
	case c.OpName != "":
		return fmt.Sprintf("%s %s %v", c.Field, c.OpName, c.Value)
	case c.OpFunc != nil:
		return fmt.Sprintf("%s op() %v", c.Field, c.Value)
	case c.Op == OpNone:
		return fmt.Sprintf("%s === %v", c.Field, c.Value)
	}
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

// Next is where a step leads: a literal path, a path function, or an ordered
// list of Conditions where the first true one wins.
type Next struct {
	Path       string
	Func       BranchFunc
	FuncName   string
	Conditions []Condition
}

// To is a literal branch target.
func To(path string) Next {
	return Next{Path: path}
}

// When builds a conditional branch target.
func When(conds ...Condition) Next {
	return Next{Conditions: conds}
}

// IsConditional reports whether n is a list of conditions.
func (n Next) IsConditional() bool {
	return n.Conditions != nil
}

// IsZero reports whether n points nowhere.
func (n Next) IsZero() bool {
	return n.Path == "" && n.Func == nil && n.FuncName == "" && n.Conditions == nil
}

// NextStepResult is the outcome of resolving a Next.
// URL is empty when nothing matched.
type NextStepResult struct {
	URL       string
	Condition *Condition
	Fields    []string
}
