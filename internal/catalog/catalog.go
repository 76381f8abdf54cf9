package catalog

import (
	"math/rand/v2"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

// Catalog is the static registry of decks, categories and inquiry angles.
// Pure lookup, no state beyond the injected random source.
type Catalog struct {
	decks  []*domain.Deck
	angles map[domain.AngleID]*domain.InquiryAngle
	intN   func(n int) int
}

func New() *Catalog {
	return &Catalog{
		decks:  defaultDecks,
		angles: defaultAngles,
		intN:   rand.IntN,
	}
}

// NewWithDecks builds a catalog over an explicit deck list and random
// source. A nil deck list means the default roster. Used by tests.
func NewWithDecks(decks []*domain.Deck, intN func(int) int) *Catalog {
	if decks == nil {
		decks = defaultDecks
	}
	if intN == nil {
		intN = rand.IntN
	}
	return &Catalog{
		decks:  decks,
		angles: defaultAngles,
		intN:   intN,
	}
}

// Get returns a deck by id.
func (c *Catalog) Get(id domain.DeckID) (*domain.Deck, error) {
	for _, d := range c.decks {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, domain.ErrDeckNotFound
}

// Angle returns an inquiry angle by id, or nil when unknown.
func (c *Catalog) Angle(id domain.AngleID) *domain.InquiryAngle {
	return c.angles[id]
}

// Angles returns the permitted angles of a deck, in deck order.
func (c *Catalog) Angles(d *domain.Deck) []*domain.InquiryAngle {
	out := make([]*domain.InquiryAngle, 0, len(d.Angles))
	for _, id := range d.Angles {
		if a := c.angles[id]; a != nil {
			out = append(out, a)
		}
	}
	return out
}

// ListEligible returns the decks eligible for the given social context and
// age filters, in registry order. A deck is eligible iff:
//   - its suitability for the context is preferred or optional (every deck
//     passes this check under the "special" context), and
//   - its age groups intersect the active filters, where any active
//     non-adult filter excludes adult-only decks outright.
func (c *Catalog) ListEligible(ctx domain.SocialContext, ages domain.AgeSet) []*domain.Deck {
	var out []*domain.Deck
	for _, d := range c.decks {
		if !c.eligible(d, ctx, ages) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (c *Catalog) eligible(d *domain.Deck, ctx domain.SocialContext, ages domain.AgeSet) bool {
	if ctx != domain.ContextSpecial {
		switch d.Suitability[ctx] {
		case domain.SuitabilityPreferred, domain.SuitabilityOptional:
		default:
			return false
		}
	}

	if ages.HasNonAdult() && d.AgeGroups.AdultsOnly() {
		return false
	}
	return ages.Intersects(d.AgeGroups)
}

// PickRandom selects uniformly at random among eligible decks. The caller
// must surface ErrNoEligibleDecks to the user rather than retry silently.
func (c *Catalog) PickRandom(ctx domain.SocialContext, ages domain.AgeSet) (*domain.Deck, error) {
	eligible := c.ListEligible(ctx, ages)
	if len(eligible) == 0 {
		return nil, domain.ErrNoEligibleDecks
	}
	return eligible[c.intN(len(eligible))], nil
}

// ShuffleColors samples one eligible deck color per category, for the
// shuffle animation shown while a random draw is in flight. Categories with
// no eligible deck under the active filters are skipped.
func (c *Catalog) ShuffleColors(ctx domain.SocialContext, ages domain.AgeSet) []string {
	byCategory := make(map[string][]*domain.Deck)
	var order []string
	for _, d := range c.ListEligible(ctx, ages) {
		if _, seen := byCategory[d.Category]; !seen {
			order = append(order, d.Category)
		}
		byCategory[d.Category] = append(byCategory[d.Category], d)
	}

	colors := make([]string, 0, len(order))
	for _, cat := range order {
		decks := byCategory[cat]
		colors = append(colors, decks[c.intN(len(decks))].ColorClass)
	}
	return colors
}
