package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/dates"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Destination is where the router should send the user after a step.
// Reload is set when nothing matched and the step sends the user to itself.
type Destination struct {
	Path   string
	Reload bool
}

// Engine composes the navigation capabilities for one journey definition.
type Engine struct {
	def *domain.Definition

	evaluator *Evaluator
	resolver  *Resolver
	ledger    *Ledger
	guard     *Guard
	recorder  *Recorder

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock sets the clock used for relative dates and event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine for def. Named functions in def must already be bound.
func NewEngine(def *domain.Definition, opts ...EngineOption) *Engine {
	e := &Engine{
		def:    def,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.evaluator = NewEvaluator(dates.NewParser(dates.WithClock(e.now)))
	e.resolver = NewResolver(e.evaluator)
	e.ledger = NewLedger()
	e.guard = NewGuard(e.ledger)
	e.recorder = NewRecorder(e.resolver, e.ledger)
	return e
}

// Definition returns the journey the engine serves.
func (e *Engine) Definition() *domain.Definition {
	return e.def
}

func (e *Engine) step(route string) (domain.StepConfig, error) {
	step, ok := e.def.Step(route)
	if !ok {
		return domain.StepConfig{}, fmt.Errorf("%w: %s", domain.ErrStepNotFound, route)
	}
	return *step, nil
}

// CheckProgress runs the progress guard for route.
func (e *Engine) CheckProgress(ctx context.Context, route string, visit domain.Visit) error {
	step, err := e.step(route)
	if err != nil {
		return err
	}

	err = e.guard.Check(step, visit)
	event := &domain.AccessEvent{
		EventBase: e.base(domain.EventAccessGranted),
		Path:      ResolvePath(visit.BaseURL, step.Route, true),
		Allowed:   err == nil,
	}

	if err != nil {
		if perr, ok := err.(*domain.ProgressError); ok {
			event.Type = domain.EventAccessDenied
			event.Redirect = perr.Redirect
		}
		e.logger.Debug("step access denied", "path", event.Path, "redirect", event.Redirect)
		if e.hooks.OnAccessDenied != nil {
			e.hooks.OnAccessDenied(ctx, event)
		}
		return err
	}

	if e.hooks.OnAccessGranted != nil {
		e.hooks.OnAccessGranted(ctx, event)
	}
	return nil
}

// NextStepObject resolves the branching specification of route without
// making the result absolute.
func (e *Engine) NextStepObject(route string, visit domain.Visit) (domain.NextStepResult, error) {
	step, err := e.step(route)
	if err != nil {
		return domain.NextStepResult{}, err
	}
	res, err := e.resolver.Resolve(step.Next, visit.Values)
	if err != nil {
		return domain.NextStepResult{}, e.configError(step, err)
	}
	return res, nil
}

// NextStep resolves where the user goes after route. When no branch matches
// the step's own path is returned with Reload set.
func (e *Engine) NextStep(route string, visit domain.Visit) (Destination, error) {
	res, err := e.NextStepObject(route, visit)
	if err != nil {
		return Destination{}, err
	}
	if res.URL != "" {
		return Destination{Path: ResolvePath(visit.BaseURL, res.URL, false)}, nil
	}
	return Destination{Path: ResolvePath(visit.BaseURL, route, true), Reload: true}, nil
}

// Complete records route as completed. customPath optionally overrides the
// recorded path (e.g. a sub-path of a looping step).
func (e *Engine) Complete(ctx context.Context, route string, visit domain.Visit, customPath string) (domain.HistoryEntry, error) {
	step, err := e.step(route)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	entry, res, err := e.recorder.Record(e.def, step, visit, customPath)
	if err != nil {
		return domain.HistoryEntry{}, e.configError(step, err)
	}

	e.logger.Debug("step complete",
		"path", entry.Path,
		"next", entry.Next,
		"truncated", res.Truncated,
		"invalidated", res.Invalidated,
	)

	event := &domain.StepEvent{
		EventBase: e.base(domain.EventStepComplete),
		Path:      entry.Path,
		Next:      entry.Next,
		Fields:    entry.Fields,
		Truncated: res.Truncated,
	}
	if e.hooks.OnStepComplete != nil {
		e.hooks.OnStepComplete(ctx, event)
	}
	if res.Truncated > 0 && e.hooks.OnHistoryTruncated != nil {
		truncated := *event
		truncated.Type = domain.EventHistoryTruncated
		e.hooks.OnHistoryTruncated(ctx, &truncated)
	}

	return entry, nil
}

// ErrorStep picks where to send the user after a failed submission of route.
// When every error names a redirect the first one wins; otherwise requestPath
// (the path the form was posted to, relative to the base) is reloaded.
func (e *Engine) ErrorStep(errs []*domain.ValidationError, visit domain.Visit, requestPath string) Destination {
	if len(errs) > 0 {
		all := true
		for _, err := range errs {
			if err == nil || err.Redirect == "" {
				all = false
				break
			}
		}
		if all {
			return Destination{Path: ResolvePath(visit.BaseURL, errs[0].Redirect, false)}
		}
	}
	return Destination{Path: ResolvePath(visit.BaseURL, requestPath, true), Reload: true}
}

// InvalidateStep marks the absolute path invalid in the journey log.
func (e *Engine) InvalidateStep(visit domain.Visit, path string) bool {
	return e.ledger.Invalidate(visit.Journey, path)
}

// RemoveStep drops the absolute path and everything after it from the journey log.
func (e *Engine) RemoveStep(visit domain.Visit, path string) int {
	return e.ledger.RemoveFrom(visit.Journey, path)
}

// AddStep appends an entry to the journey log directly.
func (e *Engine) AddStep(visit domain.Visit, entry domain.HistoryEntry) AppendResult {
	return e.ledger.Append(visit.Journey, entry)
}

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, Wizard: e.def.Name}
}

func (e *Engine) configError(step domain.StepConfig, err error) error {
	if cerr, ok := err.(*domain.ConfigError); ok && cerr.Step == "" {
		cerr.Step = step.Route
		return cerr
	}
	return err
}
