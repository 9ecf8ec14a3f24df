package domain

// Session is the persisted snapshot of one user's journey through one wizard.
type Session struct {
	ID     string `json:"id"`
	Wizard string `json:"wizard"`

	// Values holds submitted field values (User space).
	Values map[string]any `json:"values"`

	// Journey holds the journey log under HistoryKey. A missing key means the
	// log has never been written.
	Journey map[string]JourneyLog `json:"journey,omitempty"`
}

// NewSession creates an empty session.
func NewSession(id, wizard string) *Session {
	return &Session{
		ID:     id,
		Wizard: wizard,
		Values: make(map[string]any),
	}
}

// Get implements FieldReader.
func (s *Session) Get(name string) any {
	return s.Values[name]
}

// Set stores a field value.
func (s *Session) Set(name string, value any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[name] = value
}

// History returns the journey log, nil if never written.
func (s *Session) History() JourneyLog {
	return s.Journey[HistoryKey]
}

// SetHistory replaces the journey log.
func (s *Session) SetHistory(log JourneyLog) {
	if s.Journey == nil {
		s.Journey = make(map[string]JourneyLog)
	}
	s.Journey[HistoryKey] = log
}

// Clone deep-copies the session (values are copied shallowly).
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.Values = make(map[string]any, len(s.Values))
	for k, v := range s.Values {
		next.Values[k] = v
	}
	if s.Journey != nil {
		next.Journey = make(map[string]JourneyLog, len(s.Journey))
		for k, v := range s.Journey {
			next.Journey[k] = v.Clone()
		}
	}
	return &next
}
