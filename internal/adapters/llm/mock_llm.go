package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

// MockLLM speaks the tag protocol without a network. Useful for dev mode and
// for exercising the pipeline in tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateStream(
	ctx context.Context,
	model string,
	system string,
	turns []domain.Turn,
	userMessage string,
	onChunk func(string),
) (string, error) {
	var reply string
	switch {
	case strings.Contains(userMessage, "card_back_notes"):
		reply = "<card_back_notes>**Why this card**\nIt showed up for a reason.\n" +
			"**How to hold it**\nOut loud, slowly.\n" +
			"**If it stalls**\nAnswer it about yesterday instead.\n" +
			"**Going deeper**\nAsk what the opposite answer would cost.</card_back_notes>"
	case strings.Contains(userMessage, `"timed":true`):
		reply = fmt.Sprintf("<thinking>turn %d, timed deck</thinking>"+
			"<activity_prompt>Close your eyes and count five sounds you can hear right now.</activity_prompt>"+
			"<reflection_prompt>Which of those sounds would you miss the most?</reflection_prompt>",
			len(turns))
	default:
		reply = fmt.Sprintf("<thinking>turn %d on %s</thinking>"+
			"<card_front_prompt>What is something small you noticed today that nobody else seemed to see?</card_front_prompt>",
			len(turns), model)
	}

	// Deliver in two chunks so streaming consumers get exercised.
	half := len(reply) / 2
	if onChunk != nil {
		onChunk(reply[:half])
		onChunk(reply[half:])
	}
	return reply, nil
}
