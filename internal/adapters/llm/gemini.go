package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/aluma-agent/internal/domain"
	"google.golang.org/genai"
)

type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a ModelClient backed by Vertex AI (Gemini).
func NewGeminiClient(ctx context.Context, projectID, location string) (*GeminiClient, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("%w: project and location are required", domain.ErrConfiguration)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating Vertex AI client: %v", domain.ErrConfiguration, err)
	}

	return &GeminiClient{client: client}, nil
}

// GenerateStream implements domain.ModelClient using a streaming Gemini call.
// The transcript turns plus the new user message become the conversation
// contents; chunks are forwarded to onChunk as they arrive.
func (g *GeminiClient) GenerateStream(
	ctx context.Context,
	model string,
	system string,
	turns []domain.Turn,
	userMessage string,
	onChunk func(string),
) (string, error) {
	var contents []*genai.Content
	for _, t := range turns {
		var role genai.Role
		switch t.Role {
		case domain.RoleModel:
			role = genai.RoleModel
		default:
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))

	temp := float32(0.9)
	topP := float32(0.95)
	outputTokens := int32(2048)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}

	var full strings.Builder
	for chunk, err := range g.client.Models.GenerateContentStream(ctx, model, contents, cfg) {
		if err != nil {
			return "", fmt.Errorf("gemini stream (%s): %w", model, err)
		}
		text := chunk.Text()
		if text == "" {
			continue
		}
		full.WriteString(text)
		if onChunk != nil {
			onChunk(text)
		}
	}

	if full.Len() == 0 {
		return "", fmt.Errorf("gemini returned empty text (%s)", model)
	}
	return full.String(), nil
}
