package catalog

import (
	"time"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

// Theme tags that require confirmation when combined with a sensitive
// social context.
const (
	ThemeGrief    = "grief"
	ThemeIntimacy = "intimacy"
	ThemeBody     = "body"
	ThemeMemory   = "memory"
	ThemePlay     = "play"
	ThemeFuture   = "future"
)

var SensitiveThemes = map[string]bool{
	ThemeGrief:    true,
	ThemeIntimacy: true,
	ThemeBody:     true,
}

var defaultAngles = map[domain.AngleID]*domain.InquiryAngle{
	"sensation": {
		ID:          "sensation",
		Name:        "Sensation",
		Description: "Steer toward the felt, bodily side of the topic: textures, sounds, warmth, tension.",
	},
	"origin": {
		ID:          "origin",
		Name:        "Origin story",
		Description: "Steer toward where this began: first times, inherited habits, the moment something changed.",
	},
	"contrast": {
		ID:          "contrast",
		Name:        "Contrast",
		Description: "Steer toward opposites and tensions: what it is versus what it almost was.",
	},
	"gratitude": {
		ID:          "gratitude",
		Name:        "Gratitude",
		Description: "Steer toward appreciation: small debts, quiet helpers, things that worked out.",
	},
	"future": {
		ID:          "future",
		Name:        "Future self",
		Description: "Steer toward what comes next: hopes, dreads, versions of tomorrow.",
	},
}

var (
	allAges   = domain.NewAgeSet(domain.AgeKids, domain.AgeTeens, domain.AgeAdults)
	teensUp   = domain.NewAgeSet(domain.AgeTeens, domain.AgeAdults)
	adultOnly = domain.NewAgeSet(domain.AgeAdults)
)

var defaultDecks = []*domain.Deck{
	{
		ID:         "icebreakers",
		Name:       "Icebreakers",
		Category:   "connection",
		ColorClass: "sunrise",
		Guidance: domain.DeckGuidance{
			Tone:        "light, warm, playful",
			Description: "Easy openers that help a group relax into conversation.",
		},
		Suitability: map[domain.SocialContext]domain.Suitability{
			domain.ContextSolo:      domain.SuitabilityOptional,
			domain.ContextFriends:   domain.SuitabilityPreferred,
			domain.ContextFamily:    domain.SuitabilityPreferred,
			domain.ContextPartner:   domain.SuitabilityOptional,
			domain.ContextCoworkers: domain.SuitabilityPreferred,
			domain.ContextStrangers: domain.SuitabilityPreferred,
		},
		AgeGroups: allAges,
		Intensity: 1,
		Themes:    []string{ThemePlay},
		Angles:    []domain.AngleID{"sensation", "contrast"},
	},
	{
		ID:         "memory-lane",
		Name:       "Memory Lane",
		Category:   "connection",
		ColorClass: "amber",
		Guidance: domain.DeckGuidance{
			Tone:        "nostalgic, gentle",
			Description: "Shared and personal memories, told as small stories.",
		},
		Suitability: map[domain.SocialContext]domain.Suitability{
			domain.ContextSolo:      domain.SuitabilityPreferred,
			domain.ContextFriends:   domain.SuitabilityPreferred,
			domain.ContextFamily:    domain.SuitabilityPreferred,
			domain.ContextPartner:   domain.SuitabilityPreferred,
			domain.ContextCoworkers: domain.SuitabilityOptional,
			domain.ContextStrangers: domain.SuitabilityOptional,
		},
		AgeGroups: allAges,
		Intensity: 2,
		Themes:    []string{ThemeMemory},
		Angles:    []domain.AngleID{"origin", "sensation", "gratitude"},
	},
	{
		ID:         "gratitude",
		Name:       "Small Thanks",
		Category:   "connection",
		ColorClass: "moss",
		Guidance: domain.DeckGuidance{
			Tone:        "appreciative, grounded",
			Description: "Noticing what quietly holds a life together.",
		},
		Suitability: map[domain.SocialContext]domain.Suitability{
			domain.ContextSolo:      domain.SuitabilityPreferred,
			domain.ContextFriends:   domain.SuitabilityOptional,
			domain.ContextFamily:    domain.SuitabilityPreferred,
			domain.ContextPartner:   domain.SuitabilityPreferred,
			domain.ContextCoworkers: domain.SuitabilityOptional,
			domain.ContextStrangers: domain.SuitabilityOptional,
		},
		AgeGroups: allAges,
		Intensity: 1,
		Themes:    []string{ThemeMemory},
		Angles:    []domain.AngleID{"gratitude", "origin"},
	},
	{
		ID:         "deep-waters",
		Name:       "Deep Waters",
		Category:   "depth",
		ColorClass: "indigo",
		Guidance: domain.DeckGuidance{
			Tone:        "slow, careful, unhurried",
			Description: "Questions that ask for honesty about fear, loss and change.",
		},
		Suitability: map[domain.SocialContext]domain.Suitability{
			domain.ContextSolo:      domain.SuitabilityPreferred,
			domain.ContextFriends:   domain.SuitabilityOptional,
			domain.ContextFamily:    domain.SuitabilityOptional,
			domain.ContextPartner:   domain.SuitabilityPreferred,
			domain.ContextCoworkers: domain.SuitabilityHidden,
			domain.ContextStrangers: domain.SuitabilityHidden,
		},
		AgeGroups: teensUp,
		Intensity: 4,
		Themes:    []string{ThemeGrief},
		Angles:    []domain.AngleID{"origin", "contrast"},
	},
	{
		ID:         "shadow-work",
		Name:       "Shadow Work",
		Category:   "depth",
		ColorClass: "charcoal",
		Guidance: domain.DeckGuidance{
			Tone:        "direct but kind",
			Description: "The parts of ourselves we keep off stage: envy, avoidance, old wounds.",
		},
		Suitability: map[domain.SocialContext]domain.Suitability{
			domain.ContextSolo:      domain.SuitabilityPreferred,
			domain.ContextPartner:   domain.SuitabilityOptional,
			domain.ContextFriends:   domain.SuitabilityOptional,
			domain.ContextFamily:    domain.SuitabilityHidden,
			domain.ContextCoworkers: domain.SuitabilityHidden,
			domain.ContextStrangers: domain.SuitabilityHidden,
		},
		AgeGroups: adultOnly,
		Intensity: 5,
		Themes:    []string{ThemeGrief, ThemeIntimacy},
		Angles:    []domain.AngleID{"origin", "contrast"},
	},
	{
		ID:         "closer",
		Name:       "Closer",
		Category:   "depth",
		ColorClass: "rose",
		Guidance: domain.DeckGuidance{
			Tone:        "tender, curious",
			Description: "Prompts for two people building or rebuilding closeness.",
		},
		Suitability: map[domain.SocialContext]domain.Suitability{
			domain.ContextPartner:   domain.SuitabilityPreferred,
			domain.ContextFriends:   domain.SuitabilityOptional,
			domain.ContextSolo:      domain.SuitabilityOptional,
			domain.ContextFamily:    domain.SuitabilityHidden,
			domain.ContextCoworkers: domain.SuitabilityHidden,
			domain.ContextStrangers: domain.SuitabilityHidden,
		},
		AgeGroups: adultOnly,
		Intensity: 4,
		Themes:    []string{ThemeIntimacy},
		Angles:    []domain.AngleID{"sensation", "future", "gratitude"},
	},
	{
		ID:         "wild-cards",
		Name:       "Wild Cards",
		Category:   "play",
		ColorClass: "tangerine",
		Guidance: domain.DeckGuidance{
			Tone:        "absurd, energetic",
			Description: "Improbable hypotheticals and silly debates.",
		},
		Suitability: map[domain.SocialContext]domain.Suitability{
			domain.ContextFriends:   domain.SuitabilityPreferred,
			domain.ContextFamily:    domain.SuitabilityPreferred,
			domain.ContextCoworkers: domain.SuitabilityPreferred,
			domain.ContextStrangers: domain.SuitabilityPreferred,
			domain.ContextSolo:      domain.SuitabilityOptional,
			domain.ContextPartner:   domain.SuitabilityOptional,
		},
		AgeGroups: allAges,
		Intensity: 1,
		Themes:    []string{ThemePlay},
		Angles:    []domain.AngleID{"contrast"},
	},
	{
		ID:         "story-seeds",
		Name:       "Story Seeds",
		Category:   "play",
		ColorClass: "teal",
		Guidance: domain.DeckGuidance{
			Tone:        "imaginative, collaborative",
			Description: "Build a story together, one answer at a time.",
		},
		Suitability: map[domain.SocialContext]domain.Suitability{
			domain.ContextFriends:   domain.SuitabilityPreferred,
			domain.ContextFamily:    domain.SuitabilityPreferred,
			domain.ContextStrangers: domain.SuitabilityOptional,
			domain.ContextCoworkers: domain.SuitabilityOptional,
			domain.ContextPartner:   domain.SuitabilityOptional,
			domain.ContextSolo:      domain.SuitabilityOptional,
		},
		AgeGroups: allAges,
		Intensity: 2,
		Themes:    []string{ThemePlay, ThemeFuture},
		Angles:    []domain.AngleID{"future", "contrast"},
	},
	{
		ID:         "mindful-minute",
		Name:       "Mindful Minute",
		Category:   "grounding",
		ColorClass: "sage",
		Guidance: domain.DeckGuidance{
			Tone:        "calm, spoken slowly",
			Description: "One-minute grounding exercises followed by a short reflection.",
		},
		Suitability: map[domain.SocialContext]domain.Suitability{
			domain.ContextSolo:      domain.SuitabilityPreferred,
			domain.ContextPartner:   domain.SuitabilityOptional,
			domain.ContextFriends:   domain.SuitabilityOptional,
			domain.ContextFamily:    domain.SuitabilityOptional,
			domain.ContextCoworkers: domain.SuitabilityOptional,
			domain.ContextStrangers: domain.SuitabilityOptional,
		},
		AgeGroups: allAges,
		Intensity: 2,
		Themes:    []string{ThemeBody},
		Timed: &domain.TimedActivity{
			Duration:  time.Minute,
			FollowUps: 1,
		},
		Angles: []domain.AngleID{"sensation"},
	},
	{
		ID:         "body-scan",
		Name:       "Body Stories",
		Category:   "grounding",
		ColorClass: "clay",
		Guidance: domain.DeckGuidance{
			Tone:        "gentle, embodied",
			Description: "A timed noticing exercise about how the body carries the day.",
		},
		Suitability: map[domain.SocialContext]domain.Suitability{
			domain.ContextSolo:      domain.SuitabilityPreferred,
			domain.ContextPartner:   domain.SuitabilityPreferred,
			domain.ContextFriends:   domain.SuitabilityOptional,
			domain.ContextFamily:    domain.SuitabilityOptional,
			domain.ContextCoworkers: domain.SuitabilityHidden,
			domain.ContextStrangers: domain.SuitabilityHidden,
		},
		AgeGroups: teensUp,
		Intensity: 3,
		Themes:    []string{ThemeBody},
		Timed: &domain.TimedActivity{
			Duration:  2 * time.Minute,
			FollowUps: 1,
		},
		Angles: []domain.AngleID{"sensation", "gratitude"},
	},
}
