package prefs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	type prefValue struct {
		Language string `json:"language"`
		Muted    bool   `json:"muted"`
	}

	require.NoError(t, s.Set(ctx, "session", prefValue{Language: "es", Muted: true}))

	var got prefValue
	require.NoError(t, s.Get(ctx, "session", &got))
	assert.Equal(t, prefValue{Language: "es", Muted: true}, got)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	s := NewMemoryStore()

	var dst string
	err := s.Get(context.Background(), "absent", &dst)
	assert.ErrorIs(t, err, domain.ErrPrefNotFound)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "voice", "a"))
	require.NoError(t, s.Set(ctx, "voice", "b"))

	var got string
	require.NoError(t, s.Get(ctx, "voice", &got))
	assert.Equal(t, "b", got)
}

func TestRedisStoreRequiresClient(t *testing.T) {
	_, err := NewRedisStore()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
