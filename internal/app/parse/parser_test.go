package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

func TestScannerSinglePrompt(t *testing.T) {
	s := NewScanner(nil)
	s.Feed("<thinking>pondering</thinking><card_front_prompt> What matters most? </card_front_prompt>")

	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, "What matters most?", res.Text)
	assert.Empty(t, res.Reflection)
}

func TestScannerActivityPairWinsOverFront(t *testing.T) {
	s := NewScanner(nil)
	s.Feed("<card_front_prompt>ignored</card_front_prompt>" +
		"<activity_prompt>Close your eyes and breathe.</activity_prompt>" +
		"<reflection_prompt>What did you notice?</reflection_prompt>")

	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, "Close your eyes and breathe.", res.Text)
	assert.Equal(t, "What did you notice?", res.Reflection)
}

func TestScannerActivityWithoutReflectionFallsBackToFront(t *testing.T) {
	s := NewScanner(nil)
	s.Feed("<activity_prompt>half done</activity_prompt>" +
		"<card_front_prompt>A question instead.</card_front_prompt>")

	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, "A question instead.", res.Text)
}

func TestScannerIncompleteResponse(t *testing.T) {
	s := NewScanner(nil)
	s.Feed("<thinking>hm</thinking><card_front_prompt>never closed")

	_, err := s.Result()
	assert.ErrorIs(t, err, domain.ErrIncompleteResponse)
}

func TestScannerEmitsThinkingOncePerSpan(t *testing.T) {
	var emitted []string
	s := NewScanner(func(t string) { emitted = append(emitted, t) })

	// Spans split across chunk boundaries, fed incrementally.
	s.Feed("<thinking>first th")
	assert.Empty(t, emitted, "unclosed span must not emit")
	s.Feed("ought</thinking>mid")
	s.Feed("dle<thinking>second</thinking>")
	s.Feed("<card_front_prompt>done</card_front_prompt>")

	assert.Equal(t, []string{"first thought", "second"}, emitted)
}

func TestScannerRawAccumulates(t *testing.T) {
	s := NewScanner(nil)
	s.Feed("abc")
	s.Feed("def")
	assert.Equal(t, "abcdef", s.Raw())
}

func TestExtractBackNotes(t *testing.T) {
	notes, err := ExtractBackNotes("<thinking>x</thinking><card_back_notes>\n**Why this card**\nBecause.\n</card_back_notes>")
	require.NoError(t, err)
	assert.Equal(t, "**Why this card**\nBecause.", notes)

	_, err = ExtractBackNotes("<card_back_notes>unterminated")
	assert.ErrorIs(t, err, domain.ErrIncompleteResponse)
}

func TestExtractSpanStopsAtFirstEnd(t *testing.T) {
	got, ok := extractSpan("<a>one</a><a>two</a>", "<a>", "</a>")
	require.True(t, ok)
	assert.Equal(t, "one", got)
}
