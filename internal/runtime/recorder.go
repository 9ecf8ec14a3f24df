package runtime

import (
	"github.com/aretw0/waypoint/pkg/domain"
)

// Recorder turns a completed step into a journey log entry.
type Recorder struct {
	resolver *Resolver
	ledger   *Ledger
}

// NewRecorder creates a step completion recorder.
func NewRecorder(resolver *Resolver, ledger *Ledger) *Recorder {
	return &Recorder{resolver: resolver, ledger: ledger}
}

// Entry builds the history entry for step without writing it.
// customPath, when set, replaces the step's route as the recorded path.
func (r *Recorder) Entry(def *domain.Definition, step domain.StepConfig, visit domain.Visit, customPath string) (domain.HistoryEntry, error) {
	res, err := r.resolver.Resolve(step.Next, visit.Values)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	route := step.Route
	if customPath != "" {
		route = customPath
	}

	entry := domain.HistoryEntry{
		Path:   ResolvePath(visit.BaseURL, route, true),
		Wizard: def.Name,
		Skip:   step.Skip,
		Minor:  step.Minor,
	}
	if res.URL != "" {
		entry.Next = ResolvePath(visit.BaseURL, res.URL, false)
	}

	keys := newFieldSet()
	for _, f := range step.Fields {
		keys.add(def.JourneyKey(f))
	}
	for _, f := range res.Fields {
		keys.add(def.JourneyKey(f))
	}
	if fields := keys.list(); len(fields) > 0 {
		entry.Fields = fields
	}

	if visit.Editing && res.Condition != nil && res.Condition.ContinueOnEdit {
		entry.ContinueOnEdit = true
	}

	return entry, nil
}

// Record builds the entry for step and appends it to the journey log.
func (r *Recorder) Record(def *domain.Definition, step domain.StepConfig, visit domain.Visit, customPath string) (domain.HistoryEntry, AppendResult, error) {
	entry, err := r.Entry(def, step, visit, customPath)
	if err != nil {
		return domain.HistoryEntry{}, AppendResult{}, err
	}
	return entry, r.ledger.Append(visit.Journey, entry), nil
}
