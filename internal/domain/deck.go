package domain

import "time"

// DeckGuidance is the creative metadata forwarded to the model alongside a
// deck selection.
type DeckGuidance struct {
	Tone        string `json:"tone"`
	Description string `json:"description"`
}

// DeckRef is the single capability surface shared by catalog decks and
// user-authored custom decks. Custom decks carry no suitability or timing
// metadata and are always eligible.
type DeckRef interface {
	RefID() string
	RefName() string
	RefColorClass() string
	RefGuidance() (DeckGuidance, bool)
}

// TimedActivity marks a deck whose prompts are short exercises run against a
// timer, with a reflection follow-up afterwards.
type TimedActivity struct {
	Duration    time.Duration
	FollowUps   int
}

// Deck is a themed source of prompts, immutable after startup.
type Deck struct {
	ID          DeckID
	Name        string
	Category    string
	ColorClass  string
	Guidance    DeckGuidance
	Suitability map[SocialContext]Suitability
	AgeGroups   AgeSet
	Intensity   int // 1 (light) .. 5 (deep)
	Themes      []string
	Timed       *TimedActivity
	Angles      []AngleID
}

func (d *Deck) RefID() string         { return string(d.ID) }
func (d *Deck) RefName() string       { return d.Name }
func (d *Deck) RefColorClass() string { return d.ColorClass }
func (d *Deck) RefGuidance() (DeckGuidance, bool) {
	return d.Guidance, true
}

// HasTheme reports whether the deck carries the given theme tag.
func (d *Deck) HasTheme(theme string) bool {
	for _, t := range d.Themes {
		if t == theme {
			return true
		}
	}
	return false
}

// CustomDeck is a user-authored deck variant: name, description and a color.
type CustomDeck struct {
	ID          DeckID `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ColorClass  string `json:"color_class"`
}

func (d *CustomDeck) RefID() string         { return string(d.ID) }
func (d *CustomDeck) RefName() string       { return d.Name }
func (d *CustomDeck) RefColorClass() string { return d.ColorClass }
func (d *CustomDeck) RefGuidance() (DeckGuidance, bool) {
	if d.Description == "" {
		return DeckGuidance{}, false
	}
	return DeckGuidance{Description: d.Description}, true
}

// InquiryAngle is a creative lens optionally steering prompt generation.
// Stateless; referenced by id from a deck's permitted set.
type InquiryAngle struct {
	ID          AngleID
	Name        string
	Description string
}
