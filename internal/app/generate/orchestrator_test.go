package generate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/aluma-agent/internal/adapters/audit"
	"github.com/PabloGalante/aluma-agent/internal/app/prompt"
	"github.com/PabloGalante/aluma-agent/internal/domain"
)

const validReply = "<thinking>ok</thinking><card_front_prompt>What made you laugh today?</card_front_prompt>"

// scriptedModel answers per model name, optionally blocking until released.
type scriptedModel struct {
	mu      sync.Mutex
	replies map[string]string // model name -> raw reply
	errs    map[string]error
	block   chan struct{} // when set, calls wait here first
	calls   []string
}

func (m *scriptedModel) GenerateStream(
	ctx context.Context, model, system string, turns []domain.Turn, userMessage string, onChunk func(string),
) (string, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	m.calls = append(m.calls, model)
	m.mu.Unlock()

	if err := m.errs[model]; err != nil {
		return "", err
	}
	raw := m.replies[model]
	if onChunk != nil {
		onChunk(raw)
	}
	return raw, nil
}

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func newTestOrchestrator(model domain.ModelClient, rec domain.AuditRecorder, timeout time.Duration) *Orchestrator {
	return NewOrchestrator(model, nil, rec, "primary-model", "fallback-model", timeout)
}

func frontReq() prompt.FrontRequest {
	return prompt.CompileFront(prompt.FrontInput{
		Deck:     &domain.Deck{ID: "icebreakers", Name: "Icebreakers"},
		Context:  domain.ContextFriends,
		Ages:     domain.NewAgeSet(domain.AgeAdults),
		Language: "en",
		Source:   domain.DrawSourceDeck,
	})
}

func TestGenerateFrontPrimarySuccess(t *testing.T) {
	rec := audit.NewMemoryRecorder(10)
	model := &scriptedModel{replies: map[string]string{"primary-model": validReply}}
	o := newTestOrchestrator(model, rec, time.Second)

	res, err := o.GenerateFront(context.Background(), frontReq(), "card-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "What made you laugh today?", res.Text)
	assert.False(t, res.Fallback)

	// Primary success appends the user turn and the raw model turn.
	assert.Equal(t, 2, o.ensureSession().Len())

	entries, err := rec.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditFront, entries[0].Kind)
	assert.Equal(t, "primary-model", entries[0].Model)
	assert.False(t, entries[0].Fallback)
}

func TestGenerateFrontFallbackOnPrimaryError(t *testing.T) {
	rec := audit.NewMemoryRecorder(10)
	model := &scriptedModel{
		errs:    map[string]error{"primary-model": errors.New("boom")},
		replies: map[string]string{"fallback-model": validReply},
	}
	o := newTestOrchestrator(model, rec, time.Second)

	res, err := o.GenerateFront(context.Background(), frontReq(), "card-1", nil)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.True(t, len(res.Raw) > 0 && res.Raw[:11] == "[fallback] ",
		"fallback raw output carries its provenance tag")

	// A fallback success never mutates the session.
	assert.Equal(t, 0, o.ensureSession().Len())

	entries, err := rec.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2, "one audit entry per attempt")
	// Newest first: the fallback attempt, then the failed primary.
	assert.True(t, entries[0].Fallback)
	assert.Equal(t, "fallback-model", entries[0].Model)
	assert.False(t, entries[1].Fallback)
	assert.NotEmpty(t, entries[1].Error)
}

func TestGenerateFrontMalformedPrimaryTriggersFallback(t *testing.T) {
	rec := audit.NewMemoryRecorder(10)
	model := &scriptedModel{replies: map[string]string{
		"primary-model":  "<card_front_prompt>never closed",
		"fallback-model": validReply,
	}}
	o := newTestOrchestrator(model, rec, time.Second)

	res, err := o.GenerateFront(context.Background(), frontReq(), "card-1", nil)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, 2, model.callCount())
}

func TestGenerateFrontBothAttemptsFail(t *testing.T) {
	rec := audit.NewMemoryRecorder(10)
	model := &scriptedModel{errs: map[string]error{
		"primary-model":  errors.New("down"),
		"fallback-model": errors.New("also down"),
	}}
	o := newTestOrchestrator(model, rec, time.Second)

	_, err := o.GenerateFront(context.Background(), frontReq(), "card-1", nil)
	assert.ErrorIs(t, err, domain.ErrGenerationFailure)

	entries, _ := rec.List(context.Background(), 10)
	assert.Len(t, entries, 2)
}

func TestGenerateFrontTimeoutDropsLateResult(t *testing.T) {
	rec := audit.NewMemoryRecorder(10)
	model := &scriptedModel{
		replies: map[string]string{"primary-model": validReply},
		block:   make(chan struct{}),
	}
	o := newTestOrchestrator(model, rec, 20*time.Millisecond)

	_, err := o.GenerateFront(context.Background(), frontReq(), "card-1", nil)
	assert.ErrorIs(t, err, domain.ErrGenerationTimeout)

	// Release the abandoned call; its late success must not touch the
	// session.
	close(model.block)
	assert.Never(t, func() bool {
		return o.ensureSession().Len() != 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestGenerateFrontEmitsThinking(t *testing.T) {
	model := &scriptedModel{replies: map[string]string{"primary-model": validReply}}
	o := newTestOrchestrator(model, audit.NewMemoryRecorder(10), time.Second)

	var thoughts []string
	_, err := o.GenerateFront(context.Background(), frontReq(), "card-1", func(s string) {
		thoughts = append(thoughts, s)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, thoughts)
}

func TestGenerateBack(t *testing.T) {
	rec := audit.NewMemoryRecorder(10)
	model := &scriptedModel{replies: map[string]string{
		"primary-model": "<card_back_notes>**Why this card**\nBecause.</card_back_notes>",
	}}
	o := newTestOrchestrator(model, rec, time.Second)

	notes, err := o.GenerateBack(context.Background(),
		&domain.Deck{ID: "icebreakers", Name: "Icebreakers"}, "front text", "en", "card-1")
	require.NoError(t, err)
	assert.Contains(t, notes, "**Why this card**")

	entries, _ := rec.List(context.Background(), 10)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditBack, entries[0].Kind)
}

func TestGenerateBackFailureWrapsGuidanceError(t *testing.T) {
	model := &scriptedModel{errs: map[string]error{"primary-model": errors.New("down")}}
	o := newTestOrchestrator(model, audit.NewMemoryRecorder(10), time.Second)

	_, err := o.GenerateBack(context.Background(),
		&domain.Deck{ID: "d", Name: "D"}, "front", "en", "card-1")
	assert.ErrorIs(t, err, domain.ErrGuidanceGeneration)
}

func TestWhisperAppendsWithoutModelCall(t *testing.T) {
	model := &scriptedModel{}
	o := newTestOrchestrator(model, audit.NewMemoryRecorder(10), time.Second)

	o.Whisper(context.Background(), "the group enjoyed that one")
	assert.Equal(t, 1, o.ensureSession().Len())
	assert.Equal(t, 0, model.callCount())

	o.Whisper(context.Background(), "")
	assert.Equal(t, 1, o.ensureSession().Len())
}

type fixedSpeech struct{ err error }

func (f fixedSpeech) Synthesize(ctx context.Context, text, voice, language string) (*domain.AudioPayload, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AudioPayload{Data: []byte("mp3"), MIME: "audio/mpeg"}, nil
}

func TestNarrateAudits(t *testing.T) {
	rec := audit.NewMemoryRecorder(10)
	o := NewOrchestrator(&scriptedModel{}, fixedSpeech{}, rec, "p", "f", time.Second)

	audioPayload, err := o.Narrate(context.Background(), "card-1", "hello", "voice", "en")
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", audioPayload.MIME)

	entries, _ := rec.List(context.Background(), 10)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditAudio, entries[0].Kind)
}
