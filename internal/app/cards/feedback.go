package cards

import (
	"context"
	"time"

	"github.com/PabloGalante/aluma-agent/internal/app/prompt"
	"github.com/PabloGalante/aluma-agent/internal/domain"
	"github.com/PabloGalante/aluma-agent/internal/observability"
)

// Like flags a card and relays a soft steering signal into the session.
func (s *Service) Like(ctx context.Context, id domain.CardID) error {
	s.mu.Lock()
	card, _ := s.findCardLocked(id)
	if card == nil {
		s.mu.Unlock()
		return domain.ErrCardNotFound
	}
	card.Feedback = domain.FeedbackLiked
	front := card.Prompt
	s.mu.Unlock()

	go s.orch.Whisper(context.WithoutCancel(ctx), prompt.SteeringMessage(domain.FeedbackLiked, front))
	return nil
}

// Dislike flags a card and relays the signal. Disliking the newest,
// non-faded top-level card additionally fades it and, after the fade delay,
// issues exactly one automatic random redraw. Disliking a follow-up card
// only fades that follow-up.
func (s *Service) Dislike(ctx context.Context, id domain.CardID) error {
	s.mu.Lock()
	card, topLevel := s.findCardLocked(id)
	if card == nil {
		s.mu.Unlock()
		return domain.ErrCardNotFound
	}
	card.Feedback = domain.FeedbackDisliked
	front := card.Prompt

	newest := topLevel && len(s.history) > 0 && s.history[0].ID == id
	redraw := newest && !card.Faded
	if newest || !topLevel {
		// Fade the card that is about to be replaced, or the rejected
		// follow-up. Older top-level cards keep their place.
		card.Faded = true
	}
	s.mu.Unlock()

	go s.orch.Whisper(context.WithoutCancel(ctx), prompt.SteeringMessage(domain.FeedbackDisliked, front))

	if redraw {
		bg := context.WithoutCancel(ctx)
		time.AfterFunc(s.cfg.RedrawDelay, func() {
			if _, err := s.Draw(bg, DrawRequest{Redraw: true}); err != nil {
				observability.LoggerFromContext(bg).Warnw("automatic redraw failed", "error", err)
			}
		})
	}
	return nil
}
