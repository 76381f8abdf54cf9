package domain

import "time"

// AudioPayload is synthesized narration for one card.
type AudioPayload struct {
	Data []byte
	MIME string
}

// Participant is one member of the group playing the session.
type Participant struct {
	ID   ParticipantID
	Name string
}

// Card is one generated prompt plus its metadata, audio, guidance and
// feedback state. A card is mutable: audio, back notes and feedback arrive
// after the front text.
type Card struct {
	ID   CardID
	Deck DeckRef

	// Prompt is empty while the card is pending generation.
	Prompt string

	// Reflection holds the paired reflection prompt for timed cards; it is
	// the text a follow-up card is built from.
	Reflection string

	// FollowUp is generated at most once, and only after ActivityDone
	// transitions false -> true.
	FollowUp *Card

	Audio     *AudioPayload
	BackNotes string

	Feedback Feedback
	Faded    bool

	Timed        bool
	Duration     time.Duration
	ActivityDone bool

	Participant *Participant

	CreatedAt time.Time
}

// Generating reports whether the card is still waiting for its front text.
func (c *Card) Generating() bool {
	return c.Prompt == ""
}
