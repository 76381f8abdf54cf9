package domain

import "time"

// AuditKind distinguishes the three generation side-channels.
type AuditKind string

const (
	AuditFront AuditKind = "front"
	AuditAudio AuditKind = "audio"
	AuditBack  AuditKind = "back"
)

type AuditEntryID string

// AuditEntry logs one generation attempt: the request, when it went out,
// when it resolved, and either the raw reply or the error.
type AuditEntry struct {
	ID          AuditEntryID `json:"id"`
	Kind        AuditKind    `json:"kind"`
	CardID      CardID       `json:"card_id,omitempty"`
	Model       string       `json:"model,omitempty"`
	Fallback    bool         `json:"fallback"`
	Input       string       `json:"input"`
	Output      string       `json:"output,omitempty"`
	Error       string       `json:"error,omitempty"`
	RequestedAt time.Time    `json:"requested_at"`
	ResolvedAt  time.Time    `json:"resolved_at"`
}
