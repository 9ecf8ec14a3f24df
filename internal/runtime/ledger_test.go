package runtime_test

import (
	"testing"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func chain(paths ...string) domain.JourneyLog {
	log := make(domain.JourneyLog, 0, len(paths)-1)
	for i := 0; i < len(paths)-1; i++ {
		log = append(log, domain.HistoryEntry{Path: paths[i], Next: paths[i+1]})
	}
	return log
}

func journey(log domain.JourneyLog) *domain.Session {
	s := domain.NewSession("sess-1", "wizard")
	if log != nil {
		s.SetHistory(log)
	}
	return s
}

func fiveSteps() domain.JourneyLog {
	return chain("/path/one", "/path/two", "/path/three", "/path/four", "/path/five", "/path/six")
}

func TestLedger_Append(t *testing.T) {
	ledger := runtime.NewLedger()

	t.Run("creates history when none exists", func(t *testing.T) {
		s := journey(nil)
		res := ledger.Append(s, domain.HistoryEntry{Path: "/path/newstep", Next: "/path/newnext"})
		assert.Equal(t, domain.JourneyLog{{Path: "/path/newstep", Next: "/path/newnext"}}, s.History())
		assert.Equal(t, 0, res.Index)
	})

	t.Run("appends to the end", func(t *testing.T) {
		s := journey(chain("/path/one", "/path/two", "/path/three"))
		ledger.Append(s, domain.HistoryEntry{Path: "/path/newstep", Next: "/path/newnext", Wizard: "w"})
		assert.Equal(t, domain.JourneyLog{
			{Path: "/path/one", Next: "/path/two"},
			{Path: "/path/two", Next: "/path/three"},
			{Path: "/path/newstep", Next: "/path/newnext", Wizard: "w"},
		}, s.History())
	})

	t.Run("overwrites in place when next is unchanged", func(t *testing.T) {
		s := journey(fiveSteps())
		res := ledger.Append(s, domain.HistoryEntry{Path: "/path/three", Next: "/path/four", Fields: []string{"f"}})

		want := fiveSteps()
		want[2].Fields = []string{"f"}
		assert.Equal(t, want, s.History())
		assert.Equal(t, 0, res.Truncated)
	})

	t.Run("truncates when next changes", func(t *testing.T) {
		s := journey(fiveSteps())
		res := ledger.Append(s, domain.HistoryEntry{Path: "/path/three", Next: "/path/newnext", Skip: true})
		assert.Equal(t, domain.JourneyLog{
			{Path: "/path/one", Next: "/path/two"},
			{Path: "/path/two", Next: "/path/three"},
			{Path: "/path/three", Next: "/path/newnext", Skip: true},
		}, s.History())
		assert.Equal(t, 2, res.Truncated)
	})

	t.Run("minor edit invalidates the old next instead of truncating", func(t *testing.T) {
		s := journey(fiveSteps())
		res := ledger.Append(s, domain.HistoryEntry{Path: "/path/three", Next: "/path/newnext", Minor: true})
		assert.Equal(t, domain.JourneyLog{
			{Path: "/path/one", Next: "/path/two"},
			{Path: "/path/two", Next: "/path/three"},
			{Path: "/path/three", Next: "/path/newnext", Minor: true},
			{Path: "/path/four", Next: "/path/five", Invalid: true},
			{Path: "/path/five", Next: "/path/six"},
		}, s.History())
		assert.Equal(t, "/path/four", res.Invalidated)
		assert.Equal(t, 0, res.Truncated)
	})

	t.Run("minor edit is inert when the old next is gone", func(t *testing.T) {
		s := journey(chain("/path/one", "/path/two", "/path/three", "/path/four"))
		ledger.Append(s, domain.HistoryEntry{Path: "/path/three", Next: "/path/newnext", Minor: true})
		assert.Equal(t, domain.JourneyLog{
			{Path: "/path/one", Next: "/path/two"},
			{Path: "/path/two", Next: "/path/three"},
			{Path: "/path/three", Next: "/path/newnext", Minor: true},
		}, s.History())
	})

	t.Run("does not mutate the previous slice", func(t *testing.T) {
		before := fiveSteps()
		s := journey(before)
		ledger.Append(s, domain.HistoryEntry{Path: "/path/three", Next: "/path/newnext", Minor: true})
		assert.Equal(t, fiveSteps(), before)
	})

	t.Run("paths stay unique", func(t *testing.T) {
		s := journey(nil)
		for i := 0; i < 3; i++ {
			ledger.Append(s, domain.HistoryEntry{Path: "/a", Next: "/b"})
		}
		assert.Len(t, s.History(), 1)
	})
}

func TestLedger_Invalidate(t *testing.T) {
	ledger := runtime.NewLedger()

	t.Run("marks the matching entry", func(t *testing.T) {
		s := journey(chain("/path/one", "/path/two", "/path/three", "/path/four"))
		assert.True(t, ledger.Invalidate(s, "/path/two"))
		assert.Equal(t, domain.JourneyLog{
			{Path: "/path/one", Next: "/path/two"},
			{Path: "/path/two", Next: "/path/three", Invalid: true},
			{Path: "/path/three", Next: "/path/four"},
		}, s.History())
	})

	t.Run("no-op when not found", func(t *testing.T) {
		s := journey(chain("/path/one", "/path/two", "/path/three"))
		assert.False(t, ledger.Invalidate(s, "/path/seven"))
		assert.Equal(t, chain("/path/one", "/path/two", "/path/three"), s.History())
	})

	t.Run("no-op without history", func(t *testing.T) {
		s := journey(nil)
		ledger.Invalidate(s, "/path/seven")
		assert.Nil(t, s.History())
		assert.Nil(t, s.Journey)
	})
}

func TestLedger_RemoveFrom(t *testing.T) {
	ledger := runtime.NewLedger()

	t.Run("drops the entry and everything after it", func(t *testing.T) {
		s := journey(chain("/path/one", "/path/two", "/path/three", "/path/four"))
		assert.Equal(t, 2, ledger.RemoveFrom(s, "/path/two"))
		assert.Equal(t, domain.JourneyLog{{Path: "/path/one", Next: "/path/two"}}, s.History())
	})

	t.Run("removing the first entry leaves an empty log", func(t *testing.T) {
		s := journey(chain("/path/one", "/path/two"))
		ledger.RemoveFrom(s, "/path/one")
		assert.NotNil(t, s.History())
		assert.Empty(t, s.History())
	})

	t.Run("no-op when not found", func(t *testing.T) {
		s := journey(chain("/path/one", "/path/two", "/path/three"))
		assert.Equal(t, 0, ledger.RemoveFrom(s, "/path/seven"))
		assert.Equal(t, chain("/path/one", "/path/two", "/path/three"), s.History())
	})

	t.Run("no-op without history", func(t *testing.T) {
		s := journey(nil)
		ledger.RemoveFrom(s, "/path/seven")
		assert.Nil(t, s.History())
	})
}
