package runtime

import (
	"github.com/aretw0/waypoint/pkg/domain"
)

// Guard decides whether a visit may view a step.
type Guard struct {
	ledger *Ledger
}

// NewGuard creates a progress guard.
func NewGuard(ledger *Ledger) *Guard {
	return &Guard{ledger: ledger}
}

// Check admits the visit (nil) or returns a *domain.ProgressError carrying
// where the user should be sent instead.
func (g *Guard) Check(step domain.StepConfig, visit domain.Visit) error {
	current := ResolvePath(visit.BaseURL, step.Route, true)

	if step.Reset {
		g.ledger.RemoveFrom(visit.Journey, current)
	}

	if step.EntryPoint || !step.JourneyChecked() {
		return nil
	}

	history := visit.Journey.History()
	last, ok := history.Last()
	if !ok {
		return domain.NewMissingPrereq(current, "")
	}

	if last.Next == current && !last.Invalid {
		return nil
	}

	if len(step.Prereqs) > 0 {
		for _, prereq := range step.Prereqs {
			if history.Index(ResolvePath(visit.BaseURL, prereq, false)) >= 0 {
				return nil
			}
		}
	}

	redirect := last.Path
	if last.Next != "" && !last.Invalid {
		redirect = last.Next
	}
	return domain.NewMissingPrereq(current, redirect)
}
