package cards

import (
	"github.com/PabloGalante/aluma-agent/internal/domain"
)

// State is the snapshot the external UI renders from.
type State struct {
	Loading       bool
	Shuffling     bool
	ShuffleColors []string

	// Error is the single user-visible error slot; empty when clear.
	Error string

	// PendingPrompt is the consent question of a parked draw, if any.
	PendingPrompt string

	// Cards is the history, newest first.
	Cards []*domain.Card

	ActiveParticipant domain.ParticipantID

	// AutoPlay names a freshly generated follow-up whose narration should
	// play automatically. One-shot: cleared by this read.
	AutoPlay domain.CardID
}

// cloneCard copies a card and its follow-up so snapshot holders never
// observe in-place mutation. Audio payloads and participants are immutable
// once set and are shared.
func cloneCard(c *domain.Card) *domain.Card {
	if c == nil {
		return nil
	}
	out := *c
	out.FollowUp = cloneCard(c.FollowUp)
	return &out
}

// State returns the current snapshot and consumes the one-shot autoplay
// signal. Cards are deep-copied: history mutation after the snapshot is
// taken never shows through.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards := make([]*domain.Card, 0, len(s.history))
	for _, c := range s.history {
		cards = append(cards, cloneCard(c))
	}

	st := State{
		Loading:       s.drawing,
		Shuffling:     s.shuffling,
		ShuffleColors: append([]string(nil), s.shuffleColors...),
		Error:         s.lastError,
		Cards:         cards,
		AutoPlay:      s.autoplay,
	}
	if s.pending != nil {
		st.PendingPrompt = s.pending.Prompt
	}
	if len(s.participants) > 0 {
		st.ActiveParticipant = s.participants[s.activeIdx].ID
	}
	s.autoplay = ""
	return st
}

// PendingPrompt returns the consent question of a parked draw without
// touching any one-shot state.
func (s *Service) PendingPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return ""
	}
	return s.pending.Prompt
}

// CardAudio returns the synthesized narration for a card, top-level or
// follow-up.
func (s *Service) CardAudio(id domain.CardID) (*domain.AudioPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, _ := s.findCardLocked(id)
	if card == nil {
		return nil, domain.ErrCardNotFound
	}
	if card.Audio == nil {
		return nil, domain.ErrCardNotFound
	}
	return card.Audio, nil
}
