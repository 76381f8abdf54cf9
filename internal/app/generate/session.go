package generate

import (
	"sync"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

// Session is the single stateful conversation with the model for one app
// run. Created lazily on the first generation request, torn down only on
// process end. The transcript is append-only; the fallback path reads a
// snapshot and never writes back.
type Session struct {
	mu     sync.Mutex
	system string
	turns  []domain.Turn
}

func newSession(system string) *Session {
	return &Session{system: system}
}

func (s *Session) System() string {
	return s.system
}

// Snapshot returns a copy of the transcript safe to hand to a stateless call.
func (s *Session) Snapshot() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Session) Append(turns ...domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turns...)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
