package audit

import (
	"context"
	"sync"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

// MemoryRecorder keeps a bounded ring of audit entries in process memory.
// It is NOT persistent and is only suitable for development / local mode.
type MemoryRecorder struct {
	mu      sync.RWMutex
	entries []*domain.AuditEntry
	cap     int
}

func NewMemoryRecorder(capacity int) *MemoryRecorder {
	if capacity <= 0 {
		capacity = 200
	}
	return &MemoryRecorder{cap: capacity}
}

func (r *MemoryRecorder) Record(ctx context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	if len(r.entries) > r.cap {
		r.entries = r.entries[len(r.entries)-r.cap:]
	}
	return nil
}

func (r *MemoryRecorder) Get(ctx context.Context, id domain.AuditEntryID) (*domain.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].ID == id {
			return r.entries[i], nil
		}
	}
	return nil, domain.ErrAuditNotFound
}

// List returns up to limit entries, newest first.
func (r *MemoryRecorder) List(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.entries)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*domain.AuditEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}
