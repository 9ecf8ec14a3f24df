package schema

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Validation error types reported in domain.ValidationError.Type.
const (
	ErrRequired = "required"
	ErrType     = "type"
)

// Field is the schema of one field.
type Field struct {
	Type     Type
	Required bool
	Redirect string
}

// Schema maps field names to their schema. Fields without an entry are
// accepted as submitted.
type Schema map[string]Field

// FromDefinition builds the schema declared in def.Fields.
func FromDefinition(def *domain.Definition) (Schema, error) {
	s := make(Schema, len(def.Fields))
	for name, cfg := range def.Fields {
		if cfg.Type == "" && !cfg.Required {
			continue
		}
		t, err := ParseType(cfg.Type)
		if err != nil {
			return nil, &domain.ConfigError{Detail: fmt.Sprintf("field '%s'", name), Err: err}
		}
		s[name] = Field{Type: t, Required: cfg.Required, Redirect: cfg.InvalidRedirect}
	}
	return s, nil
}

// Check validates the values submitted to step, replacing each accepted
// value with its coerced form. Empty optional values are left alone.
func (s Schema) Check(step domain.StepConfig, values map[string]any) []*domain.ValidationError {
	var errs []*domain.ValidationError
	for _, name := range step.Fields {
		field, ok := s[name]
		if !ok {
			continue
		}

		value, present := values[name]
		if !present || value == nil || value == "" {
			if field.Required {
				errs = append(errs, &domain.ValidationError{Key: name, Type: ErrRequired, Redirect: field.Redirect})
			}
			continue
		}

		coerced, err := field.Type.Coerce(value)
		if err != nil {
			errs = append(errs, &domain.ValidationError{Key: name, Type: ErrType, Redirect: field.Redirect})
			continue
		}
		values[name] = coerced
	}
	return errs
}
