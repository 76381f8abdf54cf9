package domain

import "time"

type DeckID string
type CardID string
type ParticipantID string
type AngleID string

// SocialContext is the relationship framing of the session. It drives deck
// eligibility and the tone directives sent to the model.
type SocialContext string

const (
	ContextSolo      SocialContext = "solo"
	ContextFriends   SocialContext = "friends"
	ContextFamily    SocialContext = "family"
	ContextPartner   SocialContext = "partner"
	ContextCoworkers SocialContext = "coworkers"
	ContextStrangers SocialContext = "strangers"
	ContextSpecial   SocialContext = "special"
)

// SensitiveContexts are the settings where a sensitive-themed deck requires
// an explicit confirmation before drawing.
var SensitiveContexts = map[SocialContext]bool{
	ContextCoworkers: true,
	ContextStrangers: true,
}

type AgeGroup string

const (
	AgeKids   AgeGroup = "kids"
	AgeTeens  AgeGroup = "teens"
	AgeAdults AgeGroup = "adults"
)

// AgeSet is a set of age groups, used both as deck metadata and as the
// caller's active filters.
type AgeSet map[AgeGroup]bool

func NewAgeSet(groups ...AgeGroup) AgeSet {
	s := make(AgeSet, len(groups))
	for _, g := range groups {
		s[g] = true
	}
	return s
}

// Intersects reports whether the two sets share at least one group.
func (s AgeSet) Intersects(other AgeSet) bool {
	for g := range s {
		if other[g] {
			return true
		}
	}
	return false
}

// AdultsOnly reports whether the set is exactly {adults}.
func (s AgeSet) AdultsOnly() bool {
	return len(s) == 1 && s[AgeAdults]
}

// HasNonAdult reports whether any group other than adults is present.
func (s AgeSet) HasNonAdult() bool {
	for g := range s {
		if g != AgeAdults {
			return true
		}
	}
	return false
}

// Suitability grades a deck for one social context.
type Suitability string

const (
	SuitabilityPreferred Suitability = "preferred"
	SuitabilityOptional  Suitability = "optional"
	SuitabilityHidden    Suitability = "hidden"
)

// Feedback is the user's reaction to a drawn card.
type Feedback string

const (
	FeedbackNone     Feedback = ""
	FeedbackLiked    Feedback = "liked"
	FeedbackDisliked Feedback = "disliked"
)

// DrawSource tags where a draw request came from, for model steering and audit.
type DrawSource string

const (
	DrawSourceDeck   DrawSource = "deck"
	DrawSourceRandom DrawSource = "random"
	DrawSourceRedraw DrawSource = "redraw"
	DrawSourceFollow DrawSource = "follow_up"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one entry of the session transcript.
type Turn struct {
	Role Role
	Text string
}

type Timestamp = time.Time
