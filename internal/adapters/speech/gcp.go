package speech

import (
	"context"
	"fmt"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

const synthesisTimeout = 20 * time.Second

// GCPClient narrates card text through Google Cloud Text-to-Speech.
type GCPClient struct {
	client *texttospeech.Client
}

func NewGCPClient(ctx context.Context) (*GCPClient, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating text-to-speech client: %w", err)
	}
	return &GCPClient{client: client}, nil
}

// Synthesize implements domain.SpeechClient. Failures wrap
// domain.ErrAudioSynthesis so the caller can treat them as soft.
func (c *GCPClient) Synthesize(ctx context.Context, text, voice, language string) (*domain.AudioPayload, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", domain.ErrAudioSynthesis)
	}

	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: language,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  0.95,
		},
	}

	resp, err := c.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAudioSynthesis, err)
	}
	if len(resp.AudioContent) == 0 {
		return nil, fmt.Errorf("%w: empty audio content", domain.ErrAudioSynthesis)
	}

	return &domain.AudioPayload{
		Data: resp.AudioContent,
		MIME: "audio/mpeg",
	}, nil
}

func (c *GCPClient) Close() error {
	return c.client.Close()
}
