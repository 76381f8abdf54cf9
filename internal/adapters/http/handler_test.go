package httpadapter

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditstore "github.com/PabloGalante/aluma-agent/internal/adapters/audit"
	"github.com/PabloGalante/aluma-agent/internal/adapters/llm"
	"github.com/PabloGalante/aluma-agent/internal/adapters/prefs"
	"github.com/PabloGalante/aluma-agent/internal/adapters/speech"
	"github.com/PabloGalante/aluma-agent/internal/app/cards"
	"github.com/PabloGalante/aluma-agent/internal/app/generate"
	"github.com/PabloGalante/aluma-agent/internal/catalog"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	audit := auditstore.NewMemoryRecorder(50)
	orch := generate.NewOrchestrator(llm.NewMockLLM(), speech.NewMockSpeech(), audit,
		"primary", "fallback", 2*time.Second)
	svc := cards.NewService(catalog.New(), orch, prefs.NewMemoryStore(), cards.Config{})
	return NewServer(svc, audit)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDrawAndState(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/draws", drawRequest{DeckID: "icebreakers"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	draw := decode[drawResponse](t, rec)
	require.NotNil(t, draw.Card)
	assert.Equal(t, "icebreakers", draw.Card.DeckID)
	assert.NotEmpty(t, draw.Card.Prompt)
	assert.False(t, draw.Card.Generating)
	assert.True(t, draw.Card.HasAudio)

	rec = doJSON(t, h, http.MethodGet, "/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[stateResponse](t, rec)
	require.Len(t, st.Cards, 1)
	assert.Equal(t, draw.Card.ID, st.Cards[0].ID)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestDrawUnknownDeckIs404(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/draws", drawRequest{DeckID: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDrawMethodNotAllowed(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/draws", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestConsentFlow(t *testing.T) {
	h := newTestServer(t)

	// Partner context keeps deep-waters visible; its intensity still gates.
	rec := doJSON(t, h, http.MethodPut, "/settings", settingsPayload{
		SocialContext: "partner",
		AgeFilters:    []string{"adults"},
		Language:      "en",
		Voice:         "v",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/draws", drawRequest{DeckID: "deep-waters"})
	require.Equal(t, http.StatusCreated, rec.Code)
	draw := decode[drawResponse](t, rec)
	assert.Nil(t, draw.Card)
	assert.NotEmpty(t, draw.Pending)

	rec = doJSON(t, h, http.MethodPost, "/draws/confirm", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	confirmed := decode[drawResponse](t, rec)
	require.NotNil(t, confirmed.Card)
	assert.Equal(t, "deep-waters", confirmed.Card.DeckID)

	rec = doJSON(t, h, http.MethodPost, "/draws/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelWithoutPending(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/draws/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListDecks(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/decks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string][]deckResponse](t, rec)
	require.NotEmpty(t, body["decks"])
	for _, d := range body["decks"] {
		assert.NotEmpty(t, d.ID)
		assert.NotEmpty(t, d.Name)
	}
}

func TestCustomDeckEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/decks/custom", customDeckRequest{Name: "Road Trip"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[deckResponse](t, rec)
	assert.True(t, created.Custom)

	rec = doJSON(t, h, http.MethodDelete, "/decks/custom/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/decks/custom/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomDeckRequiresName(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/decks/custom", customDeckRequest{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCardActionsAndAudio(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/draws", drawRequest{DeckID: "icebreakers"})
	require.Equal(t, http.StatusCreated, rec.Code)
	draw := decode[drawResponse](t, rec)
	require.NotNil(t, draw.Card)

	rec = doJSON(t, h, http.MethodPost, "/cards/"+draw.Card.ID+"/like", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/cards/"+draw.Card.ID+"/audio", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
	raw, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	rec = doJSON(t, h, http.MethodPost, "/cards/"+draw.Card.ID+"/unknown-action", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/cards/ghost/like", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	h := newTestServer(t)

	want := settingsPayload{
		SocialContext: "family",
		AgeFilters:    []string{"kids", "adults"},
		Language:      "es",
		Voice:         "es-ES-Neural2-A",
		Muted:         true,
	}
	rec := doJSON(t, h, http.MethodPut, "/settings", want)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, decode[settingsPayload](t, rec))
}

func TestParticipantsValidation(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPut, "/participants", map[string]any{
		"participants": []map[string]string{{"id": "p1", "name": "Alice"}, {"id": "p2", "name": ""}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/participants", map[string]any{
		"participants": []map[string]string{{"id": "p1", "name": "Alice"}},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuditListsEntriesAfterDraw(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/draws", drawRequest{DeckID: "icebreakers"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/audit?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]auditEntryResponse](t, rec)
	require.NotEmpty(t, body["entries"], "every generation attempt is audited")
	assert.Empty(t, body["entries"][0].Input, "list omits raw payloads")

	rec = doJSON(t, h, http.MethodGet, "/audit/"+body["entries"][0].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[auditEntryResponse](t, rec)
	assert.NotEmpty(t, detail.Input, "detail carries the raw request payload")

	rec = doJSON(t, h, http.MethodGet, "/audit/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/draws", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
