package domain

import "errors"

// Error taxonomy for the drawing pipeline. Fatal-to-the-draw errors unwind to
// the controller's top-level handler; soft errors are logged and surfaced as
// warnings without aborting the card.
var (
	// ErrConfiguration means the model client is unavailable. Fatal for the
	// whole session: generation stays disabled.
	ErrConfiguration = errors.New("model client unavailable")

	// ErrNoEligibleDecks means a random draw found no deck matching the
	// active social context and age filters.
	ErrNoEligibleDecks = errors.New("no eligible decks")

	// ErrGenerationTimeout means neither the primary nor the fallback call
	// resolved before the global deadline.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrGenerationFailure means both model attempts failed or parsing
	// failed after both.
	ErrGenerationFailure = errors.New("generation failed")

	// ErrIncompleteResponse means the parser found no closed prompt tags by
	// stream end. Treated identically to ErrGenerationFailure by callers.
	ErrIncompleteResponse = errors.New("incomplete model response")

	// ErrAudioSynthesis is soft: the card is created text-only.
	ErrAudioSynthesis = errors.New("audio synthesis failed")

	// ErrGuidanceGeneration is soft: the card's back notes stay empty.
	ErrGuidanceGeneration = errors.New("card back generation failed")

	// ErrDrawInFlight rejects a draw while another one is running.
	ErrDrawInFlight = errors.New("a draw is already in flight")

	ErrCardNotFound = errors.New("card not found")
	ErrDeckNotFound = errors.New("deck not found")

	// ErrNoPendingDraw means confirm/cancel was called with no parked draw.
	ErrNoPendingDraw = errors.New("no pending draw")

	// ErrAuditNotFound is returned by AuditRecorder.Get for an unknown id.
	ErrAuditNotFound = errors.New("audit entry not found")

	// ErrPrefNotFound is returned by PrefStore.Get for an absent key.
	// Callers fall back to documented defaults silently.
	ErrPrefNotFound = errors.New("preference not found")
)
