package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PabloGalante/aluma-agent/internal/app/cards"
	"github.com/PabloGalante/aluma-agent/internal/domain"
	"github.com/PabloGalante/aluma-agent/internal/observability"
)

type Server struct {
	svc   *cards.Service
	audit domain.AuditRecorder
}

func NewServer(svc *cards.Service, audit domain.AuditRecorder) http.Handler {
	s := &Server{svc: svc, audit: audit}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/state", s.handleState)

	// /decks                    → GET: eligible decks
	// /decks/custom             → POST: create custom deck
	// /decks/custom/{id}        → DELETE: remove custom deck
	mux.HandleFunc("/decks", s.handleDecks)
	mux.HandleFunc("/decks/custom", s.handleCustomDecks)
	mux.HandleFunc("/decks/custom/", s.handleCustomDeckWithID)

	// /draws         → POST: draw a card (by deck id or random)
	// /draws/confirm → POST: confirm a parked draw
	// /draws/cancel  → POST: cancel a parked draw
	mux.HandleFunc("/draws", s.handleDraws)
	mux.HandleFunc("/draws/confirm", s.handleConfirmDraw)
	mux.HandleFunc("/draws/cancel", s.handleCancelDraw)

	// /cards/{id}/like | dislike | timer-end | redo | audio
	mux.HandleFunc("/cards/", s.handleCardWithID)

	mux.HandleFunc("/settings", s.handleSettings)
	mux.HandleFunc("/participants", s.handleParticipants)
	mux.HandleFunc("/errors/dismiss", s.handleDismissError)
	mux.HandleFunc("/audit", s.handleAudit)
	mux.HandleFunc("/audit/", s.handleAuditWithID)

	return chainMiddlewares(mux, withCORS, withRequestID, withLogging)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type drawRequest struct {
	DeckID  string `json:"deck_id,omitempty"`
	AngleID string `json:"angle_id,omitempty"`
	Redraw  bool   `json:"redraw,omitempty"`
}

type drawResponse struct {
	Card    *cardResponse `json:"card,omitempty"`
	Pending string        `json:"pending_confirmation,omitempty"`
}

type cardResponse struct {
	ID           string        `json:"id"`
	DeckID       string        `json:"deck_id"`
	DeckName     string        `json:"deck_name"`
	ColorClass   string        `json:"color_class"`
	Prompt       string        `json:"prompt"`
	Generating   bool          `json:"generating"`
	Reflection   string        `json:"reflection,omitempty"`
	BackNotes    string        `json:"back_notes,omitempty"`
	HasAudio     bool          `json:"has_audio"`
	Feedback     string        `json:"feedback,omitempty"`
	Faded        bool          `json:"faded"`
	Timed        bool          `json:"timed"`
	DurationSecs int           `json:"duration_seconds,omitempty"`
	ActivityDone bool          `json:"activity_done,omitempty"`
	Participant  string        `json:"participant,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	FollowUp     *cardResponse `json:"follow_up,omitempty"`
}

type stateResponse struct {
	Loading           bool           `json:"loading"`
	Shuffling         bool           `json:"shuffling"`
	ShuffleColors     []string       `json:"shuffle_colors,omitempty"`
	Error             string         `json:"error,omitempty"`
	PendingPrompt     string         `json:"pending_prompt,omitempty"`
	Cards             []cardResponse `json:"cards"`
	ActiveParticipant string         `json:"active_participant,omitempty"`
	AutoPlay          string         `json:"auto_play_card_id,omitempty"`
}

type deckResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ColorClass string `json:"color_class"`
	Custom     bool   `json:"custom"`
}

type customDeckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ColorClass  string `json:"color_class,omitempty"`
}

type settingsPayload struct {
	SocialContext string   `json:"social_context"`
	AgeFilters    []string `json:"age_filters"`
	Language      string   `json:"language"`
	Voice         string   `json:"voice"`
	Muted         bool     `json:"muted"`
}

type participantsRequest struct {
	Participants []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"participants"`
}

type auditEntryResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	CardID      string    `json:"card_id,omitempty"`
	Model       string    `json:"model,omitempty"`
	Fallback    bool      `json:"fallback"`
	Input       string    `json:"input,omitempty"`
	Output      string    `json:"output,omitempty"`
	Error       string    `json:"error,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
	ResolvedAt  time.Time `json:"resolved_at"`
}

func toAuditEntryResponse(e *domain.AuditEntry, full bool) auditEntryResponse {
	out := auditEntryResponse{
		ID:          string(e.ID),
		Kind:        string(e.Kind),
		CardID:      string(e.CardID),
		Model:       e.Model,
		Fallback:    e.Fallback,
		Error:       e.Error,
		RequestedAt: e.RequestedAt,
		ResolvedAt:  e.ResolvedAt,
	}
	if full {
		out.Input = e.Input
		out.Output = e.Output
	}
	return out
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, toStateResponse(s.svc.State()))
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	decks := s.svc.ListDecks()
	out := make([]deckResponse, 0, len(decks))
	for _, d := range decks {
		_, custom := d.(*domain.CustomDeck)
		out = append(out, deckResponse{
			ID:         d.RefID(),
			Name:       d.RefName(),
			ColorClass: d.RefColorClass(),
			Custom:     custom,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"decks": out})
}

func (s *Server) handleCustomDecks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req customDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		badRequest(w, "name is required")
		return
	}

	deck, err := s.svc.AddCustomDeck(r.Context(), req.Name, req.Description, req.ColorClass)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deckResponse{
		ID:         deck.RefID(),
		Name:       deck.RefName(),
		ColorClass: deck.RefColorClass(),
		Custom:     true,
	})
}

func (s *Server) handleCustomDeckWithID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/decks/custom/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	if err := s.svc.DeleteCustomDeck(r.Context(), domain.DeckID(id)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleDraws(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req drawRequest
	if r.Body != nil {
		// An empty body means a random draw.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	card, err := s.svc.Draw(r.Context(), cards.DrawRequest{
		DeckID:  domain.DeckID(req.DeckID),
		AngleID: domain.AngleID(req.AngleID),
		Redraw:  req.Redraw,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := drawResponse{}
	if card != nil {
		c := toCardResponse(card)
		resp.Card = &c
	} else {
		resp.Pending = s.svc.PendingPrompt()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleConfirmDraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	card, err := s.svc.ConfirmPending(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := drawResponse{}
	if card != nil {
		c := toCardResponse(card)
		resp.Card = &c
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCancelDraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.svc.CancelPending(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// /cards/{id}/{action}
func (s *Server) handleCardWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/cards/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := domain.CardID(parts[0])
	action := parts[1]

	if action == "audio" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleCardAudio(w, r, id)
		return
	}

	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var err error
	switch action {
	case "like":
		err = s.svc.Like(r.Context(), id)
	case "dislike":
		err = s.svc.Dislike(r.Context(), id)
	case "timer-end":
		err = s.svc.TimerEnd(r.Context(), id)
	case "redo":
		err = s.svc.RedoActivity(id)
	default:
		http.NotFound(w, r)
		return
	}

	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCardAudio(w http.ResponseWriter, r *http.Request, id domain.CardID) {
	audio, err := s.svc.CardAudio(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", audio.MIME)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio.Data)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toSettingsPayload(s.svc.Settings()))
	case http.MethodPut:
		var req settingsPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
		if err := s.svc.UpdateSettings(r.Context(), fromSettingsPayload(req)); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSettingsPayload(s.svc.Settings()))
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleParticipants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}

	var req participantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	participants := make([]domain.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		if strings.TrimSpace(p.Name) == "" {
			badRequest(w, "participant name is required")
			return
		}
		participants = append(participants, domain.Participant{
			ID:   domain.ParticipantID(p.ID),
			Name: p.Name,
		})
	}
	s.svc.SetParticipants(participants)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDismissError(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.svc.DismissError()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.audit.List(r.Context(), limit)
	if err != nil {
		internalError(w, err)
		return
	}

	// List omits the raw payloads; the detail endpoint carries them.
	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditEntryResponse(e, false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (s *Server) handleAuditWithID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/audit/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	entry, err := s.audit.Get(r.Context(), domain.AuditEntryID(id))
	if err != nil {
		if errors.Is(err, domain.ErrAuditNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditEntryResponse(entry, true))
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

func toCardResponse(c *domain.Card) cardResponse {
	resp := cardResponse{
		ID:           string(c.ID),
		DeckID:       c.Deck.RefID(),
		DeckName:     c.Deck.RefName(),
		ColorClass:   c.Deck.RefColorClass(),
		Prompt:       c.Prompt,
		Generating:   c.Generating(),
		Reflection:   c.Reflection,
		BackNotes:    c.BackNotes,
		HasAudio:     c.Audio != nil,
		Feedback:     string(c.Feedback),
		Faded:        c.Faded,
		Timed:        c.Timed,
		ActivityDone: c.ActivityDone,
		CreatedAt:    c.CreatedAt,
	}
	if c.Timed {
		resp.DurationSecs = int(c.Duration.Seconds())
	}
	if c.Participant != nil {
		resp.Participant = c.Participant.Name
	}
	if c.FollowUp != nil {
		child := toCardResponse(c.FollowUp)
		resp.FollowUp = &child
	}
	return resp
}

func toStateResponse(st cards.State) stateResponse {
	out := stateResponse{
		Loading:           st.Loading,
		Shuffling:         st.Shuffling,
		ShuffleColors:     st.ShuffleColors,
		Error:             st.Error,
		PendingPrompt:     st.PendingPrompt,
		Cards:             make([]cardResponse, 0, len(st.Cards)),
		ActiveParticipant: string(st.ActiveParticipant),
		AutoPlay:          string(st.AutoPlay),
	}
	for _, c := range st.Cards {
		out.Cards = append(out.Cards, toCardResponse(c))
	}
	return out
}

func toSettingsPayload(s cards.Settings) settingsPayload {
	ages := make([]string, 0, len(s.AgeFilters))
	for _, a := range s.AgeFilters {
		ages = append(ages, string(a))
	}
	return settingsPayload{
		SocialContext: string(s.SocialContext),
		AgeFilters:    ages,
		Language:      s.Language,
		Voice:         s.Voice,
		Muted:         s.Muted,
	}
}

func fromSettingsPayload(p settingsPayload) cards.Settings {
	ages := make([]domain.AgeGroup, 0, len(p.AgeFilters))
	for _, a := range p.AgeFilters {
		ages = append(ages, domain.AgeGroup(a))
	}
	return cards.Settings{
		SocialContext: domain.SocialContext(p.SocialContext),
		AgeFilters:    ages,
		Language:      p.Language,
		Voice:         p.Voice,
		Muted:         p.Muted,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrCardNotFound), errors.Is(err, domain.ErrDeckNotFound):
		http.NotFound(w, r)
	case errors.Is(err, domain.ErrDrawInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a draw is already in flight"})
	case errors.Is(err, domain.ErrNoPendingDraw):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no pending draw"})
	case errors.Is(err, domain.ErrNoEligibleDecks):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "no eligible decks"})
	case errors.Is(err, domain.ErrGenerationTimeout),
		errors.Is(err, domain.ErrGenerationFailure),
		errors.Is(err, domain.ErrConfiguration):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		internalError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	observability.Logger().Errorw("internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
