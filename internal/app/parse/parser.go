// Package parse extracts structured fields from the tag-delimited text the
// model streams back: thinking spans, a single card-front prompt or an
// activity/reflection pair, and card-back notes.
package parse

import (
	"strings"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

const (
	thinkingStart = "<thinking>"
	thinkingEnd   = "</thinking>"

	frontStart = "<card_front_prompt>"
	frontEnd   = "</card_front_prompt>"

	activityStart = "<activity_prompt>"
	activityEnd   = "</activity_prompt>"

	reflectionStart = "<reflection_prompt>"
	reflectionEnd   = "</reflection_prompt>"

	backStart = "<card_back_notes>"
	backEnd   = "</card_back_notes>"
)

// Result is the parsed outcome of one front-generation stream.
type Result struct {
	// Text is the card front: the single prompt, or the activity
	// instructions when Reflection is set.
	Text string

	// Reflection is the paired reflection prompt of a timed activity,
	// empty otherwise.
	Reflection string
}

// Scanner consumes an incrementally growing response buffer. Feed may be
// called once per stream chunk; closed thinking spans are emitted exactly
// once each, in document order, via the callback. The scanner tracks the
// offset of the last consumed thinking span so re-feeding never re-emits.
type Scanner struct {
	buf        strings.Builder
	consumed   int // offset past the last emitted </thinking>
	onThinking func(string)
}

func NewScanner(onThinking func(string)) *Scanner {
	return &Scanner{onThinking: onThinking}
}

// Feed appends a chunk and emits any thinking spans that closed.
func (s *Scanner) Feed(chunk string) {
	s.buf.WriteString(chunk)
	s.drainThinking()
}

func (s *Scanner) drainThinking() {
	text := s.buf.String()
	for {
		rest := text[s.consumed:]
		start := strings.Index(rest, thinkingStart)
		if start < 0 {
			return
		}
		bodyStart := start + len(thinkingStart)
		end := strings.Index(rest[bodyStart:], thinkingEnd)
		if end < 0 {
			// Span not closed yet; wait for more chunks.
			return
		}
		if s.onThinking != nil {
			s.onThinking(rest[bodyStart : bodyStart+end])
		}
		s.consumed += bodyStart + end + len(thinkingEnd)
	}
}

// Raw returns the full buffer accumulated so far.
func (s *Scanner) Raw() string {
	return s.buf.String()
}

// Result parses the terminated stream, in priority order: a closed
// activity+reflection pair wins over a closed single prompt; anything else is
// ErrIncompleteResponse.
func (s *Scanner) Result() (Result, error) {
	text := s.buf.String()

	activity, okA := extractSpan(text, activityStart, activityEnd)
	reflection, okR := extractSpan(text, reflectionStart, reflectionEnd)
	if okA && okR {
		return Result{Text: activity, Reflection: reflection}, nil
	}

	if front, ok := extractSpan(text, frontStart, frontEnd); ok {
		return Result{Text: front}, nil
	}

	return Result{}, domain.ErrIncompleteResponse
}

// ExtractBackNotes parses a guidance-generation reply: a single closed
// card_back_notes span, or ErrIncompleteResponse.
func ExtractBackNotes(raw string) (string, error) {
	notes, ok := extractSpan(raw, backStart, backEnd)
	if !ok {
		return "", domain.ErrIncompleteResponse
	}
	return notes, nil
}

// extractSpan returns the trimmed text between the first start marker and
// the first end marker after it.
func extractSpan(text, start, end string) (string, bool) {
	i := strings.Index(text, start)
	if i < 0 {
		return "", false
	}
	body := text[i+len(start):]
	j := strings.Index(body, end)
	if j < 0 {
		return "", false
	}
	return strings.TrimSpace(body[:j]), true
}
