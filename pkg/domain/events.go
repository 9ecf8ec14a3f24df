package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepComplete     EventType = "step_complete"
	EventAccessGranted    EventType = "access_granted"
	EventAccessDenied     EventType = "access_denied"
	EventHistoryTruncated EventType = "history_truncated"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Wizard    string    `json:"wizard"`
}

// StepEvent is emitted when a step is recorded in the journey log.
type StepEvent struct {
	EventBase
	Path      string   `json:"path"`
	Next      string   `json:"next,omitempty"`
	Fields    []string `json:"fields,omitempty"`
	Truncated int      `json:"truncated,omitempty"`
}

// AccessEvent is emitted by the progress guard for every admission decision.
type AccessEvent struct {
	EventBase
	Path     string `json:"path"`
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepComplete     func(context.Context, *StepEvent)
	OnAccessGranted    func(context.Context, *AccessEvent)
	OnAccessDenied     func(context.Context, *AccessEvent)
	OnHistoryTruncated func(context.Context, *StepEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepComplete:     chain(h.OnStepComplete, other.OnStepComplete),
		OnAccessGranted:    chain(h.OnAccessGranted, other.OnAccessGranted),
		OnAccessDenied:     chain(h.OnAccessDenied, other.OnAccessDenied),
		OnHistoryTruncated: chain(h.OnHistoryTruncated, other.OnHistoryTruncated),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
