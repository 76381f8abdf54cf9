package audit

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

// FirestoreRecorder persists audit entries to a Firestore collection.
type FirestoreRecorder struct {
	client *firestore.Client
}

// NewFirestoreRecorder creates a Firestore-backed audit recorder.
// Uses the project passed (ALUMA_GCP_PROJECT).
func NewFirestoreRecorder(ctx context.Context, projectID string) (*FirestoreRecorder, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore recorder")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &FirestoreRecorder{client: client}, nil
}

func (r *FirestoreRecorder) entriesCol() *firestore.CollectionRef {
	return r.client.Collection("audit_entries")
}

type entryDoc struct {
	Kind        string    `firestore:"kind"`
	CardID      string    `firestore:"card_id"`
	Model       string    `firestore:"model"`
	Fallback    bool      `firestore:"fallback"`
	Input       string    `firestore:"input"`
	Output      string    `firestore:"output"`
	Error       string    `firestore:"error"`
	RequestedAt time.Time `firestore:"requested_at"`
	ResolvedAt  time.Time `firestore:"resolved_at"`
}

func (d entryDoc) toEntry(id string) *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:          domain.AuditEntryID(id),
		Kind:        domain.AuditKind(d.Kind),
		CardID:      domain.CardID(d.CardID),
		Model:       d.Model,
		Fallback:    d.Fallback,
		Input:       d.Input,
		Output:      d.Output,
		Error:       d.Error,
		RequestedAt: d.RequestedAt,
		ResolvedAt:  d.ResolvedAt,
	}
}

func (r *FirestoreRecorder) Record(ctx context.Context, entry *domain.AuditEntry) error {
	doc := entryDoc{
		Kind:        string(entry.Kind),
		CardID:      string(entry.CardID),
		Model:       entry.Model,
		Fallback:    entry.Fallback,
		Input:       entry.Input,
		Output:      entry.Output,
		Error:       entry.Error,
		RequestedAt: entry.RequestedAt,
		ResolvedAt:  entry.ResolvedAt,
	}

	_, err := r.entriesCol().Doc(string(entry.ID)).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore Record: %w", err)
	}
	return nil
}

func (r *FirestoreRecorder) Get(ctx context.Context, id domain.AuditEntryID) (*domain.AuditEntry, error) {
	snap, err := r.entriesCol().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrAuditNotFound
		}
		return nil, fmt.Errorf("firestore Get: %w", err)
	}

	var doc entryDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode entryDoc: %w", err)
	}
	return doc.toEntry(snap.Ref.ID), nil
}

func (r *FirestoreRecorder) List(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	q := r.entriesCol().OrderBy("requested_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.AuditEntry
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore List: %w", err)
		}

		var doc entryDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode entryDoc: %w", err)
		}
		out = append(out, doc.toEntry(snap.Ref.ID))
	}
	return out, nil
}
