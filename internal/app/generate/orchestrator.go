// Package generate owns the chat session lifecycle and the primary/fallback
// model race behind every card generation.
package generate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/aluma-agent/internal/app/parse"
	"github.com/PabloGalante/aluma-agent/internal/app/prompt"
	"github.com/PabloGalante/aluma-agent/internal/domain"
	"github.com/PabloGalante/aluma-agent/internal/observability"
)

// Orchestrator drives one generation request through the state machine
// Idle -> Racing(primary) -> {Success | Racing(fallback) -> {Success|Failure}}
// with a global timeout racing both attempts.
type Orchestrator struct {
	model  domain.ModelClient
	speech domain.SpeechClient
	audit  domain.AuditRecorder

	primaryModel  string
	fallbackModel string
	timeout       time.Duration

	mu      sync.Mutex
	session *Session

	now func() time.Time
}

func NewOrchestrator(
	model domain.ModelClient,
	speech domain.SpeechClient,
	audit domain.AuditRecorder,
	primaryModel, fallbackModel string,
	timeout time.Duration,
) *Orchestrator {
	return &Orchestrator{
		model:         model,
		speech:        speech,
		audit:         audit,
		primaryModel:  primaryModel,
		fallbackModel: fallbackModel,
		timeout:       timeout,
		now:           time.Now,
	}
}

// ensureSession lazily creates the process-wide session with the fixed
// system directive.
func (o *Orchestrator) ensureSession() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		o.session = newSession(prompt.SystemDirective)
	}
	return o.session
}

// FrontResult is a successful front generation: parsed text, the optional
// paired reflection, and the raw transcript text for audit.
type FrontResult struct {
	Text       string
	Reflection string
	Raw        string
	Fallback   bool
}

type frontOutcome struct {
	result *FrontResult
	err    error
}

// GenerateFront resolves one front-text request. The primary call runs in
// the live session; any primary error triggers exactly one stateless
// fallback call over a transcript snapshot, whose raw output is tagged with
// its provenance and which never mutates the session. If the timeout elapses
// first the in-flight call is abandoned, not cancelled, and its late result
// is dropped.
func (o *Orchestrator) GenerateFront(
	ctx context.Context,
	req prompt.FrontRequest,
	cardID domain.CardID,
	onThinking func(string),
) (*FrontResult, error) {
	if o.model == nil {
		return nil, domain.ErrConfiguration
	}

	session := o.ensureSession()
	userMsg := req.Message()
	snapshot := session.Snapshot()

	log := observability.LoggerFromContext(ctx).With("card_id", cardID)

	// The attempt must outlive a caller timeout without being cancelled:
	// the race abandons it. settled marks the request terminal so a late
	// result cannot mutate the session after a timeout already surfaced.
	attemptCtx := context.WithoutCancel(ctx)
	settled := new(atomic.Bool)

	outcomeCh := make(chan frontOutcome, 1)
	go func() {
		out := o.runFront(attemptCtx, session.System(), snapshot, userMsg, cardID, onThinking)
		if !settled.CompareAndSwap(false, true) {
			return // request already timed out; drop the late result
		}
		if out.err == nil && !out.result.Fallback {
			session.Append(
				domain.Turn{Role: domain.RoleUser, Text: userMsg},
				domain.Turn{Role: domain.RoleModel, Text: out.result.Raw},
			)
		}
		outcomeCh <- out
	}()

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case out := <-outcomeCh:
		return out.result, out.err
	case <-timer.C:
		if settled.CompareAndSwap(false, true) {
			log.Warnw("front generation timed out", "timeout", o.timeout)
			return nil, domain.ErrGenerationTimeout
		}
		// Lost the race by a hair: the outcome is already in flight.
		out := <-outcomeCh
		return out.result, out.err
	}
}

// runFront executes the primary attempt and, on any primary error, the
// single stateless fallback attempt over the snapshot.
func (o *Orchestrator) runFront(
	ctx context.Context,
	system string,
	snapshot []domain.Turn,
	userMsg string,
	cardID domain.CardID,
	onThinking func(string),
) frontOutcome {
	log := observability.LoggerFromContext(ctx).With("card_id", cardID)

	res, err := o.attemptFront(ctx, o.primaryModel, system, snapshot, userMsg, cardID, false, onThinking)
	if err == nil {
		return frontOutcome{result: res}
	}

	log.Warnw("primary model failed, falling back", "error", err, "fallback_model", o.fallbackModel)

	res, fbErr := o.attemptFront(ctx, o.fallbackModel, system, snapshot, userMsg, cardID, true, onThinking)
	if fbErr != nil {
		log.Errorw("fallback model failed", "error", fbErr)
		return frontOutcome{err: fmt.Errorf("%w: primary: %v; fallback: %v", domain.ErrGenerationFailure, err, fbErr)}
	}
	return frontOutcome{result: res}
}

// attemptFront makes one model call, drives the parser over the stream, and
// writes exactly one audit entry whether it succeeds or fails.
func (o *Orchestrator) attemptFront(
	ctx context.Context,
	model string,
	system string,
	turns []domain.Turn,
	userMsg string,
	cardID domain.CardID,
	fallback bool,
	onThinking func(string),
) (*FrontResult, error) {
	scanner := parse.NewScanner(onThinking)
	requestedAt := o.now()

	raw, err := o.model.GenerateStream(ctx, model, system, turns, userMsg, scanner.Feed)

	var result parse.Result
	if err == nil {
		result, err = scanner.Result()
	}
	if fallback && raw != "" {
		raw = "[fallback] " + raw
	}

	o.record(ctx, &domain.AuditEntry{
		Kind:        domain.AuditFront,
		CardID:      cardID,
		Model:       model,
		Fallback:    fallback,
		Input:       userMsg,
		Output:      raw,
		Error:       errString(err),
		RequestedAt: requestedAt,
		ResolvedAt:  o.now(),
	})

	if err != nil {
		return nil, fmt.Errorf("model %s: %w", model, err)
	}

	return &FrontResult{
		Text:       result.Text,
		Reflection: result.Reflection,
		Raw:        raw,
		Fallback:   fallback,
	}, nil
}

// GenerateBack produces the card-back guidance for a generated front.
// Stateless single attempt; failures wrap ErrGuidanceGeneration so the
// caller treats them as soft.
func (o *Orchestrator) GenerateBack(ctx context.Context, deck domain.DeckRef, front, language string, cardID domain.CardID) (string, error) {
	if o.model == nil {
		return "", domain.ErrConfiguration
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	userMsg := prompt.CompileBack(deck, front, language)
	requestedAt := o.now()

	raw, err := o.model.GenerateStream(ctx, o.primaryModel, prompt.SystemDirective, nil, userMsg, nil)

	var notes string
	if err == nil {
		notes, err = parse.ExtractBackNotes(raw)
	}

	o.record(ctx, &domain.AuditEntry{
		Kind:        domain.AuditBack,
		CardID:      cardID,
		Model:       o.primaryModel,
		Input:       userMsg,
		Output:      raw,
		Error:       errString(err),
		RequestedAt: requestedAt,
		ResolvedAt:  o.now(),
	})

	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGuidanceGeneration, err)
	}
	return notes, nil
}

// Narrate synthesizes narration audio for a card, auditing the call.
func (o *Orchestrator) Narrate(ctx context.Context, cardID domain.CardID, text, voice, language string) (*domain.AudioPayload, error) {
	if o.speech == nil {
		return nil, fmt.Errorf("%w: no speech client", domain.ErrAudioSynthesis)
	}

	requestedAt := o.now()
	audio, err := o.speech.Synthesize(ctx, text, voice, language)

	entry := &domain.AuditEntry{
		Kind:        domain.AuditAudio,
		CardID:      cardID,
		Input:       text,
		Error:       errString(err),
		RequestedAt: requestedAt,
		ResolvedAt:  o.now(),
	}
	if audio != nil {
		entry.Output = fmt.Sprintf("%d bytes %s", len(audio.Data), audio.MIME)
	}
	o.record(ctx, entry)

	return audio, err
}

// Whisper appends a soft steering turn to the live session transcript. The
// next generation sees it as conversation context; no model call is made.
func (o *Orchestrator) Whisper(ctx context.Context, text string) {
	if text == "" {
		return
	}
	o.ensureSession().Append(domain.Turn{Role: domain.RoleUser, Text: text})
}

func (o *Orchestrator) record(ctx context.Context, entry *domain.AuditEntry) {
	if o.audit == nil {
		return
	}
	entry.ID = domain.AuditEntryID(uuid.NewString())
	if err := o.audit.Record(ctx, entry); err != nil {
		observability.LoggerFromContext(ctx).Warnw("audit record failed", "error", err, "kind", entry.Kind)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
