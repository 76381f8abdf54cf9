// Package cards sequences the full card lifecycle: consent gating, front
// generation, audio and back-notes fan-out, history, participant rotation,
// timed activities and their follow-ups, and feedback.
package cards

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/PabloGalante/aluma-agent/internal/app/generate"
	"github.com/PabloGalante/aluma-agent/internal/app/prompt"
	"github.com/PabloGalante/aluma-agent/internal/catalog"
	"github.com/PabloGalante/aluma-agent/internal/domain"
	"github.com/PabloGalante/aluma-agent/internal/observability"
)

// Config carries the controller's behavioral tunables.
type Config struct {
	HistoryCap       int
	ConsentIntensity int
	RedrawDelay      time.Duration
}

// confirmationGate parks a draw behind user consent. Discarded on confirm
// or cancel; confirming replays the exact same draw.
type confirmationGate struct {
	Prompt  string
	Request DrawRequest
}

// Service is the card lifecycle controller. One draw (fresh or follow-up)
// may be in flight at a time, enforced by the drawing flag.
type Service struct {
	catalog *catalog.Catalog
	orch    *generate.Orchestrator
	prefs   domain.PrefStore
	cfg     Config

	now   func() time.Time
	newID func() domain.CardID
	intN  func(int) int

	mu            sync.Mutex
	history       []*domain.Card // newest first
	participants  []domain.Participant
	activeIdx     int
	drawing       bool
	shuffling     bool
	shuffleColors []string
	lastError     string
	pending       *confirmationGate
	followQueue   []domain.CardID
	followUpFor   domain.CardID // parent of the follow-up being generated
	autoplay      domain.CardID // one-shot: follow-up to auto-play, unless muted

	settings    Settings
	customDecks []domain.CustomDeck
}

func NewService(
	cat *catalog.Catalog,
	orch *generate.Orchestrator,
	prefs domain.PrefStore,
	cfg Config,
) *Service {
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = 12
	}
	if cfg.ConsentIntensity <= 0 {
		cfg.ConsentIntensity = 4
	}

	s := &Service{
		catalog: cat,
		orch:    orch,
		prefs:   prefs,
		cfg:     cfg,
		now:     time.Now,
		newID:   func() domain.CardID { return domain.CardID(uuid.NewString()) },
		intN:    rand.IntN,
	}
	s.settings = defaultSettings()
	return s
}

// DrawRequest is the UI-facing draw command. An empty DeckID means a random
// draw over the eligible set.
type DrawRequest struct {
	DeckID  domain.DeckID
	AngleID domain.AngleID
	Redraw  bool

	// confirmed marks the replay of a draw that already passed its
	// confirmation gate.
	confirmed bool
}

// Draw runs one complete draw cycle. It returns the finished card, or nil
// with no error when the draw was parked behind a confirmation gate.
func (s *Service) Draw(ctx context.Context, req DrawRequest) (*domain.Card, error) {
	log := observability.LoggerFromContext(ctx)

	s.mu.Lock()
	if s.drawing {
		s.mu.Unlock()
		return nil, domain.ErrDrawInFlight
	}

	deck, err := s.resolveDeckLocked(req)
	if err != nil {
		s.lastError = userMessage(err)
		s.mu.Unlock()
		return nil, err
	}

	if !req.confirmed && s.requiresConsent(deck) {
		// Pin the resolved deck so confirming replays this exact draw,
		// not a fresh random pick.
		parked := req
		parked.DeckID = domain.DeckID(deck.RefID())
		s.pending = &confirmationGate{
			Prompt:  consentPrompt(deck),
			Request: parked,
		}
		s.mu.Unlock()
		log.Infow("draw parked behind consent gate", "deck", deck.RefID())
		return nil, nil
	}

	// Acquire the drawing lock and fire the shuffle side-effect.
	s.drawing = true
	s.lastError = ""
	random := req.DeckID == ""
	if random {
		s.shuffling = true
		s.shuffleColors = s.catalog.ShuffleColors(s.settings.SocialContext, s.settings.ageSet())
	}

	in := s.frontInputLocked(deck, req)
	muted := s.settings.Muted
	voice := s.settings.Voice
	language := s.settings.Language
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.drawing = false
		s.shuffling = false
		s.shuffleColors = nil
		s.mu.Unlock()
		s.drainFollowUps(context.WithoutCancel(ctx))
	}()

	card, err := s.generateCard(ctx, deck, in, muted, voice, language)
	if err != nil {
		s.mu.Lock()
		s.lastError = userMessage(err)
		s.mu.Unlock()
		log.Errorw("draw failed", "deck", deck.RefID(), "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.insertLocked(card)
	if len(s.participants) > 1 && !req.Redraw && !card.Timed {
		s.activeIdx = (s.activeIdx + 1) % len(s.participants)
	}
	// The caller gets a copy; the history entry stays private to the
	// service so later mutation cannot race the caller's reads.
	ret := cloneCard(card)
	s.mu.Unlock()

	log.Infow("draw completed", "deck", deck.RefID(), "card_id", card.ID, "timed", card.Timed)
	return ret, nil
}

// resolveDeckLocked maps the request to a catalog deck, a custom deck, or a
// random eligible pick. Caller holds s.mu.
func (s *Service) resolveDeckLocked(req DrawRequest) (domain.DeckRef, error) {
	if req.DeckID == "" {
		return s.catalog.PickRandom(s.settings.SocialContext, s.settings.ageSet())
	}

	if d, err := s.catalog.Get(req.DeckID); err == nil {
		return d, nil
	}
	for i := range s.customDecks {
		if s.customDecks[i].ID == req.DeckID {
			// Copy: deleting a custom deck compacts the slice in place,
			// which must not rewrite a deck an in-flight draw is reading.
			d := s.customDecks[i]
			return &d, nil
		}
	}
	return nil, domain.ErrDeckNotFound
}

// requiresConsent: intensity at or above the high-water mark, or a
// sensitive theme in a sensitive social context. Custom decks never gate.
func (s *Service) requiresConsent(ref domain.DeckRef) bool {
	d, ok := ref.(*domain.Deck)
	if !ok {
		return false
	}
	if d.Intensity >= s.cfg.ConsentIntensity {
		return true
	}
	if !domain.SensitiveContexts[s.settings.SocialContext] {
		return false
	}
	for _, theme := range d.Themes {
		if catalog.SensitiveThemes[theme] {
			return true
		}
	}
	return false
}

func consentPrompt(deck domain.DeckRef) string {
	return fmt.Sprintf("%q goes somewhere deeper than most decks. Draw from it anyway?", deck.RefName())
}

// frontInputLocked assembles the compiler input. Caller holds s.mu.
func (s *Service) frontInputLocked(deck domain.DeckRef, req DrawRequest) prompt.FrontInput {
	in := prompt.FrontInput{
		Deck:          deck,
		Participants:  append([]domain.Participant(nil), s.participants...),
		Context:       s.settings.SocialContext,
		Ages:          s.settings.ageSet(),
		Language:      s.settings.Language,
		HistoryLength: len(s.history),
		Redraw:        req.Redraw,
		Source:        drawSource(req),
	}
	if len(s.participants) > 0 {
		p := s.participants[s.activeIdx]
		in.Active = &p
	}

	if req.AngleID != "" {
		in.Angle = s.catalog.Angle(req.AngleID)
	} else if d, ok := deck.(*domain.Deck); ok && len(d.Angles) > 0 {
		// No angle requested: pick one of the deck's permitted lenses.
		in.Angle = s.catalog.Angle(d.Angles[s.intN(len(d.Angles))])
	}
	return in
}

func drawSource(req DrawRequest) domain.DrawSource {
	switch {
	case req.Redraw:
		return domain.DrawSourceRedraw
	case req.DeckID == "":
		return domain.DrawSourceRandom
	default:
		return domain.DrawSourceDeck
	}
}

// generateCard runs front generation, then the audio + back-notes fan-out.
// Front failure aborts the draw; audio and back failures are soft.
func (s *Service) generateCard(
	ctx context.Context,
	deck domain.DeckRef,
	in prompt.FrontInput,
	muted bool,
	voice, language string,
) (*domain.Card, error) {
	log := observability.LoggerFromContext(ctx)

	card := &domain.Card{
		ID:          s.newID(),
		Deck:        deck,
		Participant: in.Active,
		CreatedAt:   s.now(),
	}
	if d, ok := deck.(*domain.Deck); ok && d.Timed != nil {
		card.Timed = true
		card.Duration = d.Timed.Duration
	}

	req := prompt.CompileFront(in)
	front, err := s.orch.GenerateFront(ctx, req, card.ID, nil)
	if err != nil {
		if errors.Is(err, domain.ErrIncompleteResponse) {
			err = fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
		}
		return nil, err
	}

	card.Prompt = front.Text
	card.Reflection = front.Reflection

	s.enrich(ctx, card, deck, muted, voice, language)
	if card.Audio == nil && !muted {
		log.Warnw("card created without audio", "card_id", card.ID)
	}
	return card, nil
}

// enrich fans out narration audio (unless muted) and back-notes generation
// concurrently and waits for both. Both legs are non-fatal. Results are
// staged in locals and assigned under the lock: the card may already be
// visible to snapshot readers.
func (s *Service) enrich(
	ctx context.Context,
	card *domain.Card,
	deck domain.DeckRef,
	muted bool,
	voice, language string,
) {
	log := observability.LoggerFromContext(ctx).With("card_id", card.ID)

	front := card.Prompt

	var (
		g     errgroup.Group
		audio *domain.AudioPayload
		notes string
	)

	if !muted {
		g.Go(func() error {
			a, err := s.orch.Narrate(ctx, card.ID, front, voice, language)
			if err != nil {
				log.Warnw("audio synthesis failed", "error", err)
				return nil
			}
			audio = a
			return nil
		})
	}

	g.Go(func() error {
		n, err := s.orch.GenerateBack(ctx, deck, front, language, card.ID)
		if err != nil {
			log.Warnw("card back generation failed", "error", err)
			return nil
		}
		notes = n
		return nil
	})

	_ = g.Wait()

	s.mu.Lock()
	if audio != nil {
		card.Audio = audio
	}
	if notes != "" {
		card.BackNotes = notes
	}
	s.mu.Unlock()
}

// insertLocked prepends a card and evicts beyond the cap, oldest first.
// Caller holds s.mu.
func (s *Service) insertLocked(card *domain.Card) {
	s.history = append([]*domain.Card{card}, s.history...)
	if len(s.history) > s.cfg.HistoryCap {
		s.history = s.history[:s.cfg.HistoryCap]
	}
}

// ConfirmPending replays the parked draw.
func (s *Service) ConfirmPending(ctx context.Context) (*domain.Card, error) {
	s.mu.Lock()
	gate := s.pending
	s.pending = nil
	s.mu.Unlock()

	if gate == nil {
		return nil, domain.ErrNoPendingDraw
	}

	req := gate.Request
	req.confirmed = true
	return s.Draw(ctx, req)
}

// CancelPending discards the parked draw.
func (s *Service) CancelPending() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return domain.ErrNoPendingDraw
	}
	s.pending = nil
	return nil
}

// TimerEnd is the external signal that a timed card's activity finished.
// Flips the completion flag and queues exactly one follow-up generation.
func (s *Service) TimerEnd(ctx context.Context, id domain.CardID) error {
	s.mu.Lock()
	card := s.findTopLevelLocked(id)
	if card == nil {
		s.mu.Unlock()
		return domain.ErrCardNotFound
	}
	if !card.Timed || card.ActivityDone {
		s.mu.Unlock()
		return nil
	}
	card.ActivityDone = true
	if s.qualifiesForFollowUpLocked(card) {
		s.followQueue = append(s.followQueue, card.ID)
	}
	s.mu.Unlock()

	s.drainFollowUps(ctx)
	return nil
}

/// qualifiesForFollowUpLocked: completed, timed deck with follow-ups, the
// reflection text arrived, and no follow-up exists yet. Caller holds s.mu.
func (s *Service) qualifiesForFollowUpLocked(card *domain.Card) bool {
	if !card.ActivityDone || card.FollowUp != nil || card.Reflection == "" {
		return false
	}
	d, ok := card.Deck.(*domain.Deck)
	return ok && d.Timed != nil && d.Timed.FollowUps > 0
}

// drainFollowUps consumes the pending follow-up queue FIFO, serialized
// against draws through the same drawing flag. If a draw is in flight the
// queue is left alone; the draw's cleanup path drains it again.
func (s *Service) drainFollowUps(ctx context.Context) {
	for {
		s.mu.Lock()
		if s.drawing || len(s.followQueue) == 0 {
			s.mu.Unlock()
			return
		}
		id := s.followQueue[0]
		s.followQueue = s.followQueue[1:]

		parent := s.findTopLevelLocked(id)
		if parent == nil || !s.qualifiesForFollowUpLocked(parent) {
			s.mu.Unlock()
			continue
		}

		s.drawing = true
		s.followUpFor = parent.ID
		// Placeholder child, immediately visible as generating.
		child := &domain.Card{
			ID:        s.newID(),
			Deck:      parent.Deck,
			CreatedAt: s.now(),
		}
		parent.FollowUp = child
		muted := s.settings.Muted
		voice := s.settings.Voice
		language := s.settings.Language
		s.mu.Unlock()

		s.runFollowUp(ctx, parent, child, muted, voice, language)

		s.mu.Lock()
		s.drawing = false
		s.followUpFor = ""
		s.mu.Unlock()
	}
}

// runFollowUp fills the placeholder child from the parent's stored
// reflection text, then enriches it exactly like a primary draw.
func (s *Service) runFollowUp(
	ctx context.Context,
	parent, child *domain.Card,
	muted bool,
	voice, language string,
) {
	log := observability.LoggerFromContext(ctx).With("card_id", child.ID, "parent_id", parent.ID)

	// The child is already linked into history; its prompt write must be
	// visible atomically to snapshot readers.
	s.mu.Lock()
	child.Prompt = parent.Reflection
	s.mu.Unlock()
	s.enrich(ctx, child, parent.Deck, muted, voice, language)

	if !muted {
		s.mu.Lock()
		s.autoplay = child.ID
		s.mu.Unlock()
	}
	log.Info("follow-up ready")
}

// RedoActivity clears a completed timed card's completion flag and discards
// its follow-up, allowing the activity to run again.
func (s *Service) RedoActivity(id domain.CardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.findTopLevelLocked(id)
	if card == nil {
		return domain.ErrCardNotFound
	}
	if !card.Timed {
		return nil
	}
	if s.drawing && s.followUpFor == id {
		// The follow-up is mid-generation; discarding it now would orphan
		// the child while it is still being filled.
		return domain.ErrDrawInFlight
	}
	card.ActivityDone = false
	card.FollowUp = nil

	// Drop any queued follow-up for this card.
	kept := s.followQueue[:0]
	for _, qid := range s.followQueue {
		if qid != id {
			kept = append(kept, qid)
		}
	}
	s.followQueue = kept
	return nil
}

// findTopLevelLocked returns the top-level card with the given id.
// Caller holds s.mu.
func (s *Service) findTopLevelLocked(id domain.CardID) *domain.Card {
	for _, c := range s.history {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// findCardLocked locates a top-level card or a follow-up nested one level.
// Caller holds s.mu.
func (s *Service) findCardLocked(id domain.CardID) (card *domain.Card, topLevel bool) {
	for _, c := range s.history {
		if c.ID == id {
			return c, true
		}
		if c.FollowUp != nil && c.FollowUp.ID == id {
			return c.FollowUp, false
		}
	}
	return nil, false
}

// DismissError clears the user-visible error slot.
func (s *Service) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

// userMessage maps pipeline errors onto the single user-visible error slot.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoEligibleDecks):
		return "No deck fits the current setting and age filters."
	case errors.Is(err, domain.ErrGenerationTimeout):
		return "The card took too long to arrive. Try again."
	case errors.Is(err, domain.ErrGenerationFailure), errors.Is(err, domain.ErrIncompleteResponse):
		return "Something went wrong while writing the card. Try again."
	case errors.Is(err, domain.ErrConfiguration):
		return "Card generation is unavailable in this session."
	case errors.Is(err, domain.ErrDeckNotFound):
		return "That deck does not exist."
	default:
		return "Something went wrong. Try again."
	}
}
