package runtime

import (
	"github.com/aretw0/waypoint/pkg/domain"
)

// AppendResult reports what an Append did to the rest of the log.
type AppendResult struct {
	// Index is the position of the written entry.
	Index int
	// Truncated counts the entries dropped after Index.
	Truncated int
	// Invalidated is the path marked invalid by a minor edit, if any.
	Invalidated string
}

// Ledger maintains the journey log. Every write stores a fresh copy, so a
// slice previously returned by the store is never modified.
type Ledger struct{}

// NewLedger creates a ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append records entry. An existing entry with the same path is overwritten in
// place; if its next step changed, the stale forward chain is dropped, or for
// a minor edit only the entry the old next pointed at is marked invalid.
func (l *Ledger) Append(store domain.HistoryStore, entry domain.HistoryEntry) AppendResult {
	original := store.History()
	steps := original.Clone()
	if steps == nil {
		steps = domain.JourneyLog{}
	}
	entry = entry.Clone()

	idx := steps.Index(entry.Path)
	if idx < 0 {
		steps = append(steps, entry)
		store.SetHistory(steps)
		return AppendResult{Index: len(steps) - 1}
	}

	previous := steps[idx]
	steps[idx] = entry
	result := AppendResult{Index: idx}

	if previous.Next != entry.Next {
		if entry.Minor {
			// Lookup happens in the chain as it was before this write.
			if target := original.Index(previous.Next); target >= 0 && previous.Next != "" {
				steps[target].Invalid = true
				result.Invalidated = previous.Next
			}
		} else {
			result.Truncated = len(steps) - (idx + 1)
			steps = steps[:idx+1]
		}
	}

	store.SetHistory(steps)
	return result
}

// Invalidate marks the entry at path invalid. It does nothing when the path is
// not in the log or the log was never written.
func (l *Ledger) Invalidate(store domain.HistoryStore, path string) bool {
	steps := store.History()
	idx := steps.Index(path)
	if idx < 0 {
		return false
	}
	steps = steps.Clone()
	steps[idx].Invalid = true
	store.SetHistory(steps)
	return true
}

// RemoveFrom drops the entry at path and everything recorded after it.
// It returns the number of removed entries.
func (l *Ledger) RemoveFrom(store domain.HistoryStore, path string) int {
	steps := store.History()
	idx := steps.Index(path)
	if idx < 0 {
		return 0
	}
	removed := len(steps) - idx
	store.SetHistory(steps[:idx].Clone())
	return removed
}
