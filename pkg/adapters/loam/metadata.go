package loam

import "github.com/aretw0/waypoint/pkg/domain"

// WizardDocument is the ID of the document holding wizard-wide settings.
const WizardDocument = "wizard"

// StepMetadata is the frontmatter of a step document. The wizard document
// uses Name, BaseURL and FieldConfig instead.
type StepMetadata struct {
	Route        string   `json:"route" mapstructure:"route"`
	Order        int      `json:"order" mapstructure:"order"`
	EntryPoint   bool     `json:"entryPoint" mapstructure:"entryPoint"`
	CheckJourney *bool    `json:"checkJourney" mapstructure:"checkJourney"`
	Prereqs      []string `json:"prereqs" mapstructure:"prereqs"`
	Reset        bool     `json:"reset" mapstructure:"reset"`
	Skip         bool     `json:"skip" mapstructure:"skip"`
	Minor        bool     `json:"minor" mapstructure:"minor"`
	Editable     bool     `json:"editable" mapstructure:"editable"`
	EditSuffix   string   `json:"editSuffix" mapstructure:"editSuffix"`
	EditBackStep string   `json:"editBackStep" mapstructure:"editBackStep"`
	Fields       []string `json:"fields" mapstructure:"fields"`
	Next         any      `json:"next" mapstructure:"next"`

	Name        string                        `json:"name" mapstructure:"name"`
	BaseURL     string                        `json:"baseURL" mapstructure:"baseURL"`
	FieldConfig map[string]domain.FieldConfig `json:"fieldConfig" mapstructure:"fieldConfig"`
}
