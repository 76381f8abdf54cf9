package speech

import (
	"context"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

// MockSpeech returns a tiny fake payload. Dev mode and tests only.
type MockSpeech struct{}

func NewMockSpeech() *MockSpeech {
	return &MockSpeech{}
}

func (m *MockSpeech) Synthesize(ctx context.Context, text, voice, language string) (*domain.AudioPayload, error) {
	return &domain.AudioPayload{
		Data: []byte("mock-audio:" + text),
		MIME: "audio/mpeg",
	}, nil
}
