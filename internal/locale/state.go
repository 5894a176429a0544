package locale

import "sync/atomic"

// Defaults capture the process-wide locale configuration.
type Defaults struct {
	Locale         string
	FallbackLocale string
	WithFallback   bool
	OnlyTranslated bool
}

// State holds the global Defaults. Reads are lock free so every entity can
// consult it on each resolution.
type State struct {
	current atomic.Pointer[Defaults]
}

// NewState seeds the state with defaults.
func NewState(defaults Defaults) *State {
	st := &State{}
	st.Store(defaults)
	return st
}

// Load returns the current defaults. A nil state yields the zero value.
func (s *State) Load() Defaults {
	if s == nil {
		return Defaults{}
	}
	if current := s.current.Load(); current != nil {
		return *current
	}
	return Defaults{}
}

// Store replaces the defaults.
func (s *State) Store(defaults Defaults) {
	if s == nil {
		return
	}
	copied := defaults
	s.current.Store(&copied)
}

// SetLocale switches the global current locale, keeping the other settings.
func (s *State) SetLocale(code string) {
	if s == nil {
		return
	}
	next := s.Load()
	next.Locale = code
	s.Store(next)
}

// SetFallbackLocale switches the global fallback locale.
func (s *State) SetFallbackLocale(code string) {
	if s == nil {
		return
	}
	next := s.Load()
	next.FallbackLocale = code
	s.Store(next)
}
