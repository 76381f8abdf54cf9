package domain

import "context"

// ModelClient defines how the core application talks to a hosted language
// model. One implementation backs both the stateful primary path and the
// stateless fallback path; the orchestrator owns the transcript.
type ModelClient interface {
	// GenerateStream sends the system directive, prior turns and the new
	// user message to the named model, invoking onChunk for every text
	// chunk as it streams in. It returns the full raw text.
	GenerateStream(ctx context.Context, model string, system string, turns []Turn, userMessage string, onChunk func(string)) (string, error)
}

// SpeechClient synthesizes narration audio for a card's prompt text.
type SpeechClient interface {
	Synthesize(ctx context.Context, text, voice, language string) (*AudioPayload, error)
}

// PrefStore is the persisted preference collaborator: key -> JSON value.
// Get decodes into dst and returns ErrPrefNotFound when the key is absent.
type PrefStore interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
	Close() error
}

// AuditRecorder receives exactly one entry per generation attempt,
// successful or not. Recording must never be skipped on the fallback path.
type AuditRecorder interface {
	Record(ctx context.Context, entry *AuditEntry) error
	List(ctx context.Context, limit int) ([]*AuditEntry, error)
	Get(ctx context.Context, id AuditEntryID) (*AuditEntry, error)
}
