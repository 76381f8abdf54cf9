package cards

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/PabloGalante/aluma-agent/internal/domain"
	"github.com/PabloGalante/aluma-agent/internal/observability"
)

// Preference-store keys. Values are JSON; corrupt or missing entries fall
// back to the defaults below with a logged warning only.
const (
	prefSocialContext = "social_context"
	prefAgeFilters    = "age_filters"
	prefLanguage      = "language"
	prefVoice         = "voice"
	prefMuted         = "muted"
	prefCustomDecks   = "custom_decks"
)

// Settings is the user-tunable session configuration.
type Settings struct {
	SocialContext domain.SocialContext `json:"social_context"`
	AgeFilters    []domain.AgeGroup    `json:"age_filters"`
	Language      string               `json:"language"`
	Voice         string               `json:"voice"`
	Muted         bool                 `json:"muted"`
}

func defaultSettings() Settings {
	return Settings{
		SocialContext: domain.ContextFriends,
		AgeFilters:    []domain.AgeGroup{domain.AgeAdults},
		Language:      "en",
		Voice:         "en-US-Neural2-F",
		Muted:         false,
	}
}

func (s Settings) ageSet() domain.AgeSet {
	return domain.NewAgeSet(s.AgeFilters...)
}

// LoadSettings reads all persisted preferences, falling back silently to
// defaults for anything missing or corrupt.
func (s *Service) LoadSettings(ctx context.Context) {
	log := observability.LoggerFromContext(ctx)
	defaults := defaultSettings()
	loaded := defaults

	readPref := func(key string, dst any) bool {
		err := s.prefs.Get(ctx, key, dst)
		if err == nil {
			return true
		}
		if !errors.Is(err, domain.ErrPrefNotFound) {
			log.Warnw("preference unreadable, using default", "key", key, "error", err)
		}
		return false
	}

	var sc domain.SocialContext
	if readPref(prefSocialContext, &sc) && sc != "" {
		loaded.SocialContext = sc
	}
	var ages []domain.AgeGroup
	if readPref(prefAgeFilters, &ages) && len(ages) > 0 {
		loaded.AgeFilters = ages
	}
	var str string
	if readPref(prefLanguage, &str) && str != "" {
		loaded.Language = str
	}
	str = ""
	if readPref(prefVoice, &str) && str != "" {
		loaded.Voice = str
	}
	var muted bool
	if readPref(prefMuted, &muted) {
		loaded.Muted = muted
	}

	var custom []domain.CustomDeck
	readPref(prefCustomDecks, &custom)

	s.mu.Lock()
	s.settings = loaded
	s.customDecks = custom
	s.mu.Unlock()
}

func (s *Service) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the session settings and persists every key.
func (s *Service) UpdateSettings(ctx context.Context, in Settings) error {
	if len(in.AgeFilters) == 0 {
		in.AgeFilters = defaultSettings().AgeFilters
	}

	s.mu.Lock()
	s.settings = in
	s.mu.Unlock()

	// Fixed write order; every key is attempted even when one fails.
	writes := []struct {
		key   string
		value any
	}{
		{prefSocialContext, in.SocialContext},
		{prefAgeFilters, in.AgeFilters},
		{prefLanguage, in.Language},
		{prefVoice, in.Voice},
		{prefMuted, in.Muted},
	}

	log := observability.LoggerFromContext(ctx)
	var firstErr error
	for _, w := range writes {
		if err := s.prefs.Set(ctx, w.key, w.value); err != nil {
			log.Warnw("preference write failed", "key", w.key, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// SetParticipants replaces the group roster and resets the rotation cursor.
func (s *Service) SetParticipants(participants []domain.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = append([]domain.Participant(nil), participants...)
	s.activeIdx = 0
}

// AddCustomDeck creates and persists a user-authored deck.
func (s *Service) AddCustomDeck(ctx context.Context, name, description, colorClass string) (*domain.CustomDeck, error) {
	deck := domain.CustomDeck{
		ID:          domain.DeckID(uuid.NewString()),
		Name:        name,
		Description: description,
		ColorClass:  colorClass,
	}

	s.mu.Lock()
	s.customDecks = append(s.customDecks, deck)
	snapshot := append([]domain.CustomDeck(nil), s.customDecks...)
	s.mu.Unlock()

	if err := s.prefs.Set(ctx, prefCustomDecks, snapshot); err != nil {
		return nil, err
	}
	return &deck, nil
}

// DeleteCustomDeck removes a user-authored deck and persists the list.
func (s *Service) DeleteCustomDeck(ctx context.Context, id domain.DeckID) error {
	s.mu.Lock()
	kept := s.customDecks[:0]
	found := false
	for _, d := range s.customDecks {
		if d.ID == id {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	s.customDecks = kept
	snapshot := append([]domain.CustomDeck(nil), s.customDecks...)
	s.mu.Unlock()

	if !found {
		return domain.ErrDeckNotFound
	}
	return s.prefs.Set(ctx, prefCustomDecks, snapshot)
}

// ListDecks returns the eligible catalog decks followed by all custom
// decks, which are always eligible.
func (s *Service) ListDecks() []domain.DeckRef {
	s.mu.Lock()
	ctxSetting := s.settings.SocialContext
	ages := s.settings.ageSet()
	custom := append([]domain.CustomDeck(nil), s.customDecks...)
	s.mu.Unlock()

	var out []domain.DeckRef
	for _, d := range s.catalog.ListEligible(ctxSetting, ages) {
		out = append(out, d)
	}
	for i := range custom {
		out = append(out, &custom[i])
	}
	return out
}
