package convert

import "sync"

// EditSession carries the reentrancy state for one conversion surface.
// It replaces ambient process-wide flags: the "applying own edit" and
// "save pass in progress" guards are scoped fields whose release closures
// must be deferred, guaranteeing cleanup on every exit path.
type EditSession struct {
	mu           sync.Mutex
	applyingEdit bool
	savePass     bool
}

// NewEditSession creates an idle session.
func NewEditSession() *EditSession {
	return &EditSession{}
}

// BeginEdit marks the session as applying its own edit and returns the
// release closure. Change listeners consult ApplyingEdit to ignore the
// resulting notifications.
func (s *EditSession) BeginEdit() func() {
	s.mu.Lock()
	s.applyingEdit = true
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.applyingEdit = false
		s.mu.Unlock()
	}
}

// ApplyingEdit reports whether the session is currently applying its own edit.
func (s *EditSession) ApplyingEdit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyingEdit
}

// BeginSavePass marks a save-triggered pass as active. It returns ok=false
// when a save pass is already running, which suppresses re-entrant handling
// between the two save-time hooks.
func (s *EditSession) BeginSavePass() (release func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.savePass {
		return nil, false
	}
	s.savePass = true

	return func() {
		s.mu.Lock()
		s.savePass = false
		s.mu.Unlock()
	}, true
}

// SavePassActive reports whether a save-triggered pass is running.
func (s *EditSession) SavePassActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savePass
}
