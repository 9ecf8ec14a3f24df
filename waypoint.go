package waypoint

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/registry"
)

// Destination is where the router should send the user after a step.
type Destination = runtime.Destination

// IDGenerator names wizards built without a name.
type IDGenerator func() string

// SequentialIDs returns a generator producing prefix0, prefix1, ...
// Each generator owns its counter.
func SequentialIDs(prefix string) IDGenerator {
	var n atomic.Uint64
	return func() string {
		return fmt.Sprintf("%s%d", prefix, n.Add(1)-1)
	}
}

// Wizard is a journey definition bound to its named functions, ready to
// check and record navigation.
type Wizard struct {
	runtime *runtime.Engine

	registry *registry.Registry
	ids      IDGenerator
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithRegistry supplies the named functions the definition refers to.
func WithRegistry(r *registry.Registry) Option {
	return func(w *Wizard) {
		w.registry = r
	}
}

// WithIDGenerator names the wizard when the definition has no name.
func WithIDGenerator(ids IDGenerator) Option {
	return func(w *Wizard) {
		w.ids = ids
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) {
		w.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// WithClock sets the clock used for relative dates and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		w.now = now
	}
}

// New binds def and returns a Wizard. def is copied; every named function it
// refers to must be registered, and every operator must be known.
func New(def *domain.Definition, opts ...Option) (*Wizard, error) {
	w := &Wizard{}
	for _, opt := range opts {
		opt(w)
	}
	if w.registry == nil {
		w.registry = registry.NewRegistry()
	}

	bound, err := w.bind(def)
	if err != nil {
		return nil, err
	}

	var runtimeOpts []runtime.EngineOption
	runtimeOpts = append(runtimeOpts, runtime.WithLifecycleHooks(w.hooks))
	if w.logger != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithLogger(w.logger.With("wizard", bound.Name)))
	}
	if w.now != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithClock(w.now))
	}
	w.runtime = runtime.NewEngine(bound, runtimeOpts...)
	return w, nil
}

func (w *Wizard) bind(def *domain.Definition) (*domain.Definition, error) {
	if def == nil {
		return nil, &domain.ConfigError{Detail: "definition is nil"}
	}

	bound := &domain.Definition{
		Name:    def.Name,
		BaseURL: def.BaseURL,
		Fields:  def.Fields,
		Steps:   make([]domain.StepConfig, len(def.Steps)),
	}
	if bound.Name == "" {
		if w.ids == nil {
			return nil, &domain.ConfigError{Detail: "wizard name is required (or use WithIDGenerator)"}
		}
		bound.Name = w.ids()
	}

	seen := make(map[string]bool, len(def.Steps))
	for i, step := range def.Steps {
		if seen[step.Route] {
			return nil, &domain.ConfigError{Step: step.Route, Detail: "duplicate route"}
		}
		seen[step.Route] = true

		if err := checkOperators(step.Next); err != nil {
			return nil, &domain.ConfigError{Step: step.Route, Err: err}
		}
		next, err := w.registry.Bind(step.Next)
		if err != nil {
			return nil, &domain.ConfigError{Step: step.Route, Err: err}
		}
		step.Next = next
		bound.Steps[i] = step
	}
	return bound, nil
}

func checkOperators(next domain.Next) error {
	for _, c := range next.Conditions {
		if !c.Op.Valid() {
			return fmt.Errorf("unknown operator '%s'", c.Op)
		}
		if err := checkOperators(c.Next); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the wizard name (its session namespace).
func (w *Wizard) Name() string {
	return w.runtime.Definition().Name
}

// Definition returns the bound definition.
func (w *Wizard) Definition() *domain.Definition {
	return w.runtime.Definition()
}

// CheckProgress admits the visit to route or returns a *domain.ProgressError.
func (w *Wizard) CheckProgress(ctx context.Context, route string, visit domain.Visit) error {
	return w.runtime.CheckProgress(ctx, route, visit)
}

// Complete records route as completed and returns the recorded entry.
func (w *Wizard) Complete(ctx context.Context, route string, visit domain.Visit, customPath string) (domain.HistoryEntry, error) {
	return w.runtime.Complete(ctx, route, visit, customPath)
}

// NextStep resolves where the user goes after route.
func (w *Wizard) NextStep(route string, visit domain.Visit) (Destination, error) {
	return w.runtime.NextStep(route, visit)
}

// NextStepObject resolves the raw branching result of route.
func (w *Wizard) NextStepObject(route string, visit domain.Visit) (domain.NextStepResult, error) {
	return w.runtime.NextStepObject(route, visit)
}

// ErrorStep picks the destination after a failed submission.
func (w *Wizard) ErrorStep(errs []*domain.ValidationError, visit domain.Visit, requestPath string) Destination {
	return w.runtime.ErrorStep(errs, visit, requestPath)
}

// InvalidateStep marks an absolute path invalid in the journey log.
func (w *Wizard) InvalidateStep(visit domain.Visit, path string) bool {
	return w.runtime.InvalidateStep(visit, path)
}

// RemoveStep drops an absolute path and everything after it from the journey log.
func (w *Wizard) RemoveStep(visit domain.Visit, path string) int {
	return w.runtime.RemoveStep(visit, path)
}

// AddStep appends an entry to the journey log directly.
func (w *Wizard) AddStep(visit domain.Visit, entry domain.HistoryEntry) {
	w.runtime.AddStep(visit, entry)
}

// Visit builds a visit of the session under the wizard's base URL.
func (w *Wizard) Visit(s *domain.Session) domain.Visit {
	return domain.SessionVisit(w.Definition().BaseURL, s)
}

// ResolvePath makes target absolute under base. Targets starting with "/" are
// kept as is unless self is set (a step's own route is always under base).
func ResolvePath(base, target string, self bool) string {
	return runtime.ResolvePath(base, target, self)
}
