package domain

import "encoding/json"

// HistoryKey is the journey storage key holding the log.
const HistoryKey = "history"

// HistoryEntry is one visited step in the journey log.
// Next is empty when the step led nowhere (serialized as null).
type HistoryEntry struct {
	Path           string   `json:"path"`
	Next           string   `json:"-"`
	Fields         []string `json:"fields,omitempty"`
	Wizard         string   `json:"wizard,omitempty"`
	Skip           bool     `json:"skip,omitempty"`
	Minor          bool     `json:"minor,omitempty"`
	ContinueOnEdit bool     `json:"continueOnEdit,omitempty"`
	Invalid        bool     `json:"invalid,omitempty"`
}

type historyEntryJSON struct {
	Path           string   `json:"path"`
	Next           *string  `json:"next"`
	Fields         []string `json:"fields,omitempty"`
	Wizard         string   `json:"wizard,omitempty"`
	Skip           bool     `json:"skip,omitempty"`
	Minor          bool     `json:"minor,omitempty"`
	ContinueOnEdit bool     `json:"continueOnEdit,omitempty"`
	Invalid        bool     `json:"invalid,omitempty"`
}

// MarshalJSON always emits "next", as null when the entry has no next step.
func (h HistoryEntry) MarshalJSON() ([]byte, error) {
	out := historyEntryJSON{
		Path:           h.Path,
		Fields:         h.Fields,
		Wizard:         h.Wizard,
		Skip:           h.Skip,
		Minor:          h.Minor,
		ContinueOnEdit: h.ContinueOnEdit,
		Invalid:        h.Invalid,
	}
	if h.Next != "" {
		next := h.Next
		out.Next = &next
	}
	return json.Marshal(out)
}

func (h *HistoryEntry) UnmarshalJSON(data []byte) error {
	var in historyEntryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*h = HistoryEntry{
		Path:           in.Path,
		Fields:         in.Fields,
		Wizard:         in.Wizard,
		Skip:           in.Skip,
		Minor:          in.Minor,
		ContinueOnEdit: in.ContinueOnEdit,
		Invalid:        in.Invalid,
	}
	if in.Next != nil {
		h.Next = *in.Next
	}
	return nil
}

// Clone returns a deep copy of the entry.
func (h HistoryEntry) Clone() HistoryEntry {
	if h.Fields != nil {
		h.Fields = append([]string(nil), h.Fields...)
	}
	return h
}

// JourneyLog is the ordered, path-unique list of visited steps.
// A nil log has never been written.
type JourneyLog []HistoryEntry

// Clone deep-copies the log, preserving nil.
func (l JourneyLog) Clone() JourneyLog {
	if l == nil {
		return nil
	}
	out := make(JourneyLog, len(l))
	for i, e := range l {
		out[i] = e.Clone()
	}
	return out
}

// Index returns the position of path in the log, or -1.
func (l JourneyLog) Index(path string) int {
	for i, e := range l {
		if e.Path == path {
			return i
		}
	}
	return -1
}

// Last returns the final entry.
func (l JourneyLog) Last() (HistoryEntry, bool) {
	if len(l) == 0 {
		return HistoryEntry{}, false
	}
	return l[len(l)-1], true
}

// Paths lists the visited paths in order.
func (l JourneyLog) Paths() []string {
	paths := make([]string, len(l))
	for i, e := range l {
		paths[i] = e.Path
	}
	return paths
}
