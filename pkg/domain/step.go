package domain

// DefaultEditSuffix is appended to an editable step's route for its edit flow.
const DefaultEditSuffix = "/edit"

// DefaultEditBackStep is where an edit returns to unless the winning branch continues.
const DefaultEditBackStep = "confirm"

// FieldConfig holds per-field journey settings.
type FieldConfig struct {
	// JourneyKey renames the field when it is recorded in the journey log.
	JourneyKey string `json:"journeyKey,omitempty" yaml:"journeyKey,omitempty" mapstructure:"journeyKey"`

	// Type names the expected value type ("string", "int", "float", "bool",
	// "date" or "[type]"). Submitted values are coerced to it.
	Type     string `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	// InvalidRedirect sends the user to another step when the value is rejected.
	InvalidRedirect string `json:"invalidRedirect,omitempty" yaml:"invalidRedirect,omitempty" mapstructure:"invalidRedirect"`
}

// StepConfig configures one step of a journey.
type StepConfig struct {
	// Route is the step path relative to the wizard base URL (e.g. "/address").
	Route string

	EntryPoint bool
	// CheckJourney enables the progress guard. Nil means enabled.
	CheckJourney *bool
	Prereqs      []string
	Reset        bool

	Skip  bool
	Minor bool

	Editable     bool
	EditSuffix   string
	EditBackStep string

	// Fields are the form fields collected by this step.
	Fields []string
	// Content is Markdown shown with the step.
	Content string

	Next Next
}

// JourneyChecked reports whether the progress guard applies to the step.
func (s StepConfig) JourneyChecked() bool {
	return s.CheckJourney == nil || *s.CheckJourney
}

// EditRoute returns the route serving the edit flow of the step.
func (s StepConfig) EditRoute() string {
	suffix := s.EditSuffix
	if suffix == "" {
		suffix = DefaultEditSuffix
	}
	return s.Route + suffix
}

// EditBack returns the step an edit submission returns to.
func (s StepConfig) EditBack() string {
	if s.EditBackStep == "" {
		return DefaultEditBackStep
	}
	return s.EditBackStep
}

// Definition is a complete journey: its steps and field settings.
type Definition struct {
	Name    string
	BaseURL string
	Fields  map[string]FieldConfig
	Steps   []StepConfig
}

// Step finds a step by route.
func (d *Definition) Step(route string) (*StepConfig, bool) {
	for i := range d.Steps {
		if d.Steps[i].Route == route {
			return &d.Steps[i], true
		}
	}
	return nil, false
}

// JourneyKey translates a field name to its journey storage key.
func (d *Definition) JourneyKey(field string) string {
	if cfg, ok := d.Fields[field]; ok && cfg.JourneyKey != "" {
		return cfg.JourneyKey
	}
	return field
}

// EntryPoints lists the routes that can be visited without history.
func (d *Definition) EntryPoints() []string {
	var routes []string
	for _, s := range d.Steps {
		if s.EntryPoint {
			routes = append(routes, s.Route)
		}
	}
	return routes
}
