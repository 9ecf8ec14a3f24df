package domain

// HistoryStore is the mutable journey log the ledger operates on.
// History returns nil when the log has never been written.
type HistoryStore interface {
	History() JourneyLog
	SetHistory(JourneyLog)
}

// Visit is the request-scoped view the engine works on.
type Visit struct {
	// BaseURL is the mount point of the wizard (e.g. "/apply").
	BaseURL string
	// Editing is true while the user is changing an answer from a summary page.
	Editing bool

	Values  FieldReader
	Journey HistoryStore
}

// SessionVisit builds a Visit backed by a session.
func SessionVisit(baseURL string, s *Session) Visit {
	return Visit{BaseURL: baseURL, Values: s, Journey: s}
}
