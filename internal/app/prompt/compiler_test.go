package prompt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

func testDeck() *domain.Deck {
	return &domain.Deck{
		ID:       "memory-lane",
		Name:     "Memory Lane",
		Guidance: domain.DeckGuidance{Tone: "warm", Description: "shared pasts"},
	}
}

func baseInput() FrontInput {
	return FrontInput{
		Deck:     testDeck(),
		Context:  domain.ContextFriends,
		Ages:     domain.NewAgeSet(domain.AgeAdults),
		Language: "en",
		Source:   domain.DrawSourceDeck,
	}
}

func TestCompileFrontPayloadFields(t *testing.T) {
	in := baseInput()
	in.Participants = []domain.Participant{{ID: "p1", Name: "Alice"}, {ID: "p2", Name: "Bob"}}
	in.Active = &in.Participants[1]
	in.HistoryLength = 3

	req := CompileFront(in)

	assert.Equal(t, "Memory Lane", req.ThemeName)
	assert.Equal(t, "memory-lane", req.SelectedItem.ID)
	assert.Equal(t, "warm", req.SelectedItem.Tone)
	assert.Equal(t, 2, req.GroupContext.ParticipantCount)
	assert.Equal(t, "Bob", req.GroupContext.ActiveParticipant)
	assert.Equal(t, []string{"adults"}, req.GroupContext.AgeFilters)
	assert.Equal(t, 3, req.HistoryLength)
	assert.False(t, req.FirstCard)
	assert.False(t, req.HasDirective())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Message()), &decoded))
	assert.Equal(t, "Memory Lane", decoded["themeName"])
}

func TestCompileFrontFirstCard(t *testing.T) {
	in := baseInput()

	assert.True(t, CompileFront(in).FirstCard)

	in.Redraw = true
	assert.False(t, CompileFront(in).FirstCard, "a redraw is never the first card")

	in.Redraw = false
	in.HistoryLength = 1
	assert.False(t, CompileFront(in).FirstCard)
}

func TestCompileFrontAgeFilterOrderStable(t *testing.T) {
	in := baseInput()
	in.Ages = domain.NewAgeSet(domain.AgeAdults, domain.AgeKids, domain.AgeTeens)

	req := CompileFront(in)
	assert.Equal(t, []string{"kids", "teens", "adults"}, req.GroupContext.AgeFilters)
}

func TestCompileFrontSpecialRosterDirective(t *testing.T) {
	in := baseInput()
	in.Context = domain.ContextSpecial
	in.Participants = []domain.Participant{{Name: "Pablo"}, {Name: "Marta"}}

	req := CompileFront(in)
	assert.True(t, req.HasDirective())
	assert.Empty(t, req.GroupContext.SpecialLabel)
	assert.Contains(t, req.Message(), `"themeName"`)
}

func TestCompileFrontSpecialRosterCaseAndOrderInsensitive(t *testing.T) {
	in := baseInput()
	in.Context = domain.ContextSpecial
	in.Participants = []domain.Participant{{Name: "  amparo "}, {Name: "LUZ"}}

	req := CompileFront(in)
	assert.True(t, req.HasDirective())
}

func TestCompileFrontSpecialUnknownRosterGetsGenericLabel(t *testing.T) {
	in := baseInput()
	in.Context = domain.ContextSpecial
	in.Participants = []domain.Participant{{Name: "Ada"}, {Name: "Grace"}}

	req := CompileFront(in)
	assert.False(t, req.HasDirective())
	assert.Equal(t, "special session", req.GroupContext.SpecialLabel)
}

func TestCompileFrontSpecialRequiresExactPair(t *testing.T) {
	in := baseInput()
	in.Context = domain.ContextSpecial
	in.Participants = []domain.Participant{{Name: "Pablo"}, {Name: "Marta"}, {Name: "Ada"}}

	req := CompileFront(in)
	assert.False(t, req.HasDirective(), "a third participant breaks exact-set matching")
	assert.Equal(t, "special session", req.GroupContext.SpecialLabel)
}

func TestCompileFrontDirectiveNotMatchedOutsideSpecial(t *testing.T) {
	in := baseInput()
	in.Participants = []domain.Participant{{Name: "Pablo"}, {Name: "Marta"}}

	req := CompileFront(in)
	assert.False(t, req.HasDirective())
}

func TestCompileBackEmbedsFront(t *testing.T) {
	msg := CompileBack(testDeck(), "What small win made you smile this week?", "en")

	assert.Contains(t, msg, "Memory Lane")
	assert.Contains(t, msg, "What small win made you smile this week?")
	assert.Contains(t, msg, "**Why this card**")
}

func TestSteeringMessage(t *testing.T) {
	liked := SteeringMessage(domain.FeedbackLiked, "prompt text")
	assert.Contains(t, liked, "enjoyed")

	disliked := SteeringMessage(domain.FeedbackDisliked, "prompt text")
	assert.Contains(t, disliked, "did not land")

	assert.Empty(t, SteeringMessage(domain.FeedbackNone, "x"))
}
