package dto

import "github.com/aretw0/waypoint/pkg/domain"

// Definition is the file representation of a journey.
// Steps stay a list so their order survives decoding.
type Definition struct {
	Name    string                        `yaml:"name" mapstructure:"name"`
	BaseURL string                        `yaml:"baseURL" mapstructure:"baseURL"`
	Fields  map[string]domain.FieldConfig `yaml:"fields" mapstructure:"fields"`
	Steps   []Step                        `yaml:"steps" mapstructure:"steps"`
}

// Step is the file representation of a step. Next stays untyped: it may be a
// path, a {branch: name} map or a list of rules.
type Step struct {
	Route        string   `yaml:"route" mapstructure:"route"`
	EntryPoint   bool     `yaml:"entryPoint" mapstructure:"entryPoint"`
	CheckJourney *bool    `yaml:"checkJourney" mapstructure:"checkJourney"`
	Prereqs      []string `yaml:"prereqs" mapstructure:"prereqs"`
	Reset        bool     `yaml:"reset" mapstructure:"reset"`
	Skip         bool     `yaml:"skip" mapstructure:"skip"`
	Minor        bool     `yaml:"minor" mapstructure:"minor"`
	Editable     bool     `yaml:"editable" mapstructure:"editable"`
	EditSuffix   string   `yaml:"editSuffix" mapstructure:"editSuffix"`
	EditBackStep string   `yaml:"editBackStep" mapstructure:"editBackStep"`
	Fields       []string `yaml:"fields" mapstructure:"fields"`
	Content      string   `yaml:"content" mapstructure:"content"`
	Next         any      `yaml:"next" mapstructure:"next"`
}

// Rule is one entry of a conditional next list.
//
// Field is a name, a list of names or a map of output key to field name.
// Op is a built-in operator or the name of a registered predicate.
// Exactly one of Fn, Expr and Logic may replace the comparison.
type Rule struct {
	Field          any    `mapstructure:"field"`
	Op             string `mapstructure:"op"`
	Value          any    `mapstructure:"value"`
	Fn             string `mapstructure:"fn"`
	Expr           string `mapstructure:"expr"`
	Logic          any    `mapstructure:"logic"`
	Branch         string `mapstructure:"branch"`
	Next           any    `mapstructure:"next"`
	Redirect       string `mapstructure:"redirect"`
	ContinueOnEdit bool   `mapstructure:"continueOnEdit"`
}
