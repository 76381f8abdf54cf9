package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/PabloGalante/aluma-agent/internal/domain"
)

// FrontInput is everything the compiler needs to build one front request.
type FrontInput struct {
	Deck          domain.DeckRef
	Participants  []domain.Participant
	Active        *domain.Participant
	Context       domain.SocialContext
	Ages          domain.AgeSet
	Language      string
	Angle         *domain.InquiryAngle
	HistoryLength int
	Source        domain.DrawSource
	Redraw        bool
}

// GroupContext describes the people in the room, embedded in the payload.
type GroupContext struct {
	Context           string   `json:"context"`
	ParticipantCount  int      `json:"participantCount"`
	Participants      []string `json:"participants,omitempty"`
	ActiveParticipant string   `json:"activeParticipant,omitempty"`
	AgeFilters        []string `json:"ageFilters"`
	SpecialLabel      string   `json:"specialLabel,omitempty"`
}

// SelectedItem carries the chosen deck's identity and guidance metadata.
type SelectedItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Tone        string `json:"tone,omitempty"`
	Description string `json:"description,omitempty"`
	Timed       bool   `json:"timed"`
}

// FrontRequest is the structured payload sent as the user turn of a
// generation call.
type FrontRequest struct {
	ThemeName     string       `json:"themeName"`
	SelectedItem  SelectedItem `json:"selectedItem"`
	GroupContext  GroupContext `json:"groupContext"`
	Language      string       `json:"language"`
	HistoryLength int          `json:"historyLength"`
	Redraw        bool         `json:"redraw"`
	Angle         *AnglePayload `json:"angle,omitempty"`
	DrawSource    string       `json:"drawSource"`
	FirstCard     bool         `json:"firstCard"`

	// directive, when set, is prepended verbatim to the compiled message.
	directive string
}

type AnglePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// specialRosters maps a canonical two-person roster key to its directive.
// Matching is exact set equality, case-insensitive and order-independent.
var specialRosters = map[string]string{
	rosterKey("Pablo", "Marta"): directivePabloMarta,
	rosterKey("Luz", "Amparo"):  directiveLuzAmparo,
}

func rosterKey(names ...string) string {
	lower := make([]string, len(names))
	for i, n := range names {
		lower[i] = strings.ToLower(strings.TrimSpace(n))
	}
	sort.Strings(lower)
	return strings.Join(lower, "|")
}

// CompileFront builds the request payload for one front-text generation.
func CompileFront(in FrontInput) FrontRequest {
	item := SelectedItem{
		ID:   in.Deck.RefID(),
		Name: in.Deck.RefName(),
	}
	if g, ok := in.Deck.RefGuidance(); ok {
		item.Tone = g.Tone
		item.Description = g.Description
	}
	if d, ok := in.Deck.(*domain.Deck); ok {
		item.Timed = d.Timed != nil
	}

	names := make([]string, len(in.Participants))
	for i, p := range in.Participants {
		names[i] = p.Name
	}

	group := GroupContext{
		Context:          string(in.Context),
		ParticipantCount: len(in.Participants),
		Participants:     names,
		AgeFilters:       ageFilterList(in.Ages),
	}
	if in.Active != nil {
		group.ActiveParticipant = in.Active.Name
	}

	req := FrontRequest{
		ThemeName:     in.Deck.RefName(),
		SelectedItem:  item,
		GroupContext:  group,
		Language:      in.Language,
		HistoryLength: in.HistoryLength,
		Redraw:        in.Redraw,
		DrawSource:    string(in.Source),
		FirstCard:     in.HistoryLength == 0 && !in.Redraw,
	}

	if in.Angle != nil {
		req.Angle = &AnglePayload{
			Name:        in.Angle.Name,
			Description: in.Angle.Description,
		}
	}

	if in.Context == domain.ContextSpecial && len(names) == 2 {
		if directive, ok := specialRosters[rosterKey(names...)]; ok {
			req.directive = directive
		} else {
			req.GroupContext.SpecialLabel = "special session"
		}
	} else if in.Context == domain.ContextSpecial {
		req.GroupContext.SpecialLabel = "special session"
	}

	return req
}

// Message renders the payload as the user-turn content: the JSON object,
// preceded by the roster directive when one matched.
func (r FrontRequest) Message() string {
	payload, err := json.Marshal(r)
	if err != nil {
		// The payload is plain data; marshalling it cannot realistically
		// fail, but the compiler must not panic mid-draw.
		payload = []byte(`{}`)
	}
	if r.directive == "" {
		return string(payload)
	}
	return r.directive + "\n\n" + string(payload)
}

// HasDirective reports whether a special-roster directive matched.
func (r FrontRequest) HasDirective() bool {
	return r.directive != ""
}

func ageFilterList(ages domain.AgeSet) []string {
	// Stable order so payloads diff cleanly in the audit log.
	ordered := []domain.AgeGroup{domain.AgeKids, domain.AgeTeens, domain.AgeAdults}
	var out []string
	for _, g := range ordered {
		if ages[g] {
			out = append(out, string(g))
		}
	}
	return out
}

// CompileBack builds the user-turn content of a card-back guidance call.
func CompileBack(deck domain.DeckRef, front string, language string) string {
	var b strings.Builder
	b.WriteString(backDirective)
	fmt.Fprintf(&b, "\nDeck: %s\nLanguage: %s\nCard front:\n%s\n", deck.RefName(), language, front)
	return b.String()
}

// SteeringMessage builds the soft conversational signal relayed into the
// session after like/dislike feedback. It is deliberately mild so the model
// does not over-index on a single reaction.
func SteeringMessage(fb domain.Feedback, front string) string {
	switch fb {
	case domain.FeedbackLiked:
		return fmt.Sprintf(
			"(Aside, not a card request: the group enjoyed the last prompt %q. "+
				"Keep that register in mind as one data point, without repeating it.)", front)
	case domain.FeedbackDisliked:
		return fmt.Sprintf(
			"(Aside, not a card request: the last prompt %q did not land. "+
				"Treat it as one data point and drift away from that territory.)", front)
	default:
		return ""
	}
}
