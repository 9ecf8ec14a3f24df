// Package loam loads a wizard from a directory of documents, one per step.
//
// Each Markdown (or YAML/JSON) file is a step: its frontmatter holds the step
// settings and its body becomes the step content. The route defaults to the
// file name, so age.md serves /age. An optional wizard document sets the
// name, base URL and field configuration:
//
//	wizard.yaml   name: apply, baseURL: /apply, fieldConfig: {age: {type: int}}
//	start.md      ---\nentryPoint: true\nnext: age\n---\nWelcome!
//	age.md        ---\nfields: [age]\nnext: [...]\n---\nHow old are you?
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/waypoint/internal/compiler"
	"github.com/aretw0/waypoint/internal/dto"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Loader adapts a Loam repository into a wizard definition.
type Loader struct {
	Repo      *loam.TypedRepository[StepMetadata]
	name      string
	compilers map[string]compiler.PredicateCompiler
}

// Option configures a Loader.
type Option func(*Loader)

// WithName sets the wizard name used when no wizard document names one.
func WithName(name string) Option {
	return func(l *Loader) {
		l.name = name
	}
}

// WithCompiler enables rules written in lang ('expr' or 'logic').
func WithCompiler(lang string, c compiler.PredicateCompiler) Option {
	return func(l *Loader) {
		l.compilers[lang] = c
	}
}

// New creates a Loader over repo.
func New(repo *loam.TypedRepository[StepMetadata], opts ...Option) *Loader {
	l := &Loader{Repo: repo, compilers: make(map[string]compiler.PredicateCompiler)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open initializes a read-only Loam repository at dir. The wizard is named
// after the directory unless a wizard document or WithName says otherwise.
func Open(dir string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across Markdown, YAML and JSON.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
		loam.WithVersioning(false),
		loam.WithForceTemp(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	opts = append([]Option{WithName(filepath.Base(absPath))}, opts...)
	return New(loam.NewTypedRepository[StepMetadata](repo), opts...), nil
}

// Load reads every document and compiles the definition. Steps are ordered by
// their order key, then by route.
func (l *Loader) Load(ctx context.Context) (*domain.Definition, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	file := &dto.Definition{Name: l.name}
	type ordered struct {
		order int
		step  dto.Step
	}
	var steps []ordered
	seen := make(map[string]string)

	for _, doc := range docs {
		id := trimExtension(doc.ID)
		meta := doc.Data

		if id == WizardDocument {
			if meta.Name != "" {
				file.Name = meta.Name
			}
			file.BaseURL = meta.BaseURL
			file.Fields = meta.FieldConfig
			continue
		}

		route := meta.Route
		if route == "" {
			route = "/" + id
		}
		if !strings.HasPrefix(route, "/") {
			route = "/" + route
		}
		if other, ok := seen[route]; ok {
			return nil, fmt.Errorf("collision detected: route '%s' is defined in both '%s' and '%s'", route, other, doc.ID)
		}
		seen[route] = doc.ID

		steps = append(steps, ordered{order: meta.Order, step: dto.Step{
			Route:        route,
			EntryPoint:   meta.EntryPoint,
			CheckJourney: meta.CheckJourney,
			Prereqs:      meta.Prereqs,
			Reset:        meta.Reset,
			Skip:         meta.Skip,
			Minor:        meta.Minor,
			Editable:     meta.Editable,
			EditSuffix:   meta.EditSuffix,
			EditBackStep: meta.EditBackStep,
			Fields:       meta.Fields,
			Content:      strings.TrimSpace(doc.Content),
			Next:         meta.Next,
		}})
	}

	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].order != steps[j].order {
			return steps[i].order < steps[j].order
		}
		return steps[i].step.Route < steps[j].step.Route
	})
	for _, s := range steps {
		file.Steps = append(file.Steps, s.step)
	}
	if file.BaseURL == "" && file.Name != "" {
		file.BaseURL = "/" + file.Name
	}

	return compiler.NewParser(l.compilers).Compile(file)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	return filepath.ToSlash(strings.TrimSuffix(id, ext))
}
