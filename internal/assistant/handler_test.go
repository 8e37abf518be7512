package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vovarama1992/ai-service/internal/ai"
)

func newTestRouter(c ai.Completer) http.Handler {
	log := zap.NewNop()
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(NewService(c, nil, log), log))
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandler_Ask(t *testing.T) {
	h := newTestRouter(replying("hi there"))

	rec := do(t, h, http.MethodPost, "/ask", `{"userMessage":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"reply":"hi there"}`, rec.Body.String())
}

func TestHandler_Ask_EmptyMessageIsValid(t *testing.T) {
	fake := replying("ok")
	h := newTestRouter(fake)

	rec := do(t, h, http.MethodPost, "/ask", `{"userMessage":""}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fake.calls, 1)
}

func TestHandler_Ask_ProviderError(t *testing.T) {
	h := newTestRouter(failing(errors.New("invalid api key")))

	rec := do(t, h, http.MethodPost, "/ask", `{"userMessage":"hello"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"AI error: invalid api key"}`, rec.Body.String())
}

func TestHandler_ValidationFaults(t *testing.T) {
	cases := []struct {
		name, path, body, detail string
	}{
		{"ask missing field", "/ask", `{}`, "userMessage: required"},
		{"ask malformed json", "/ask", `{"userMessage":`, "invalid json"},
		{"ask wrong type", "/ask", `{"userMessage":5}`, "invalid json"},
		{"nlu missing text", "/nlu/parse", `{"locale":"es-CL"}`, "text: required"},
		{"nlu bad timezone", "/nlu/parse", `{"text":"hola","timezone":"Nowhere/City"}`, "timezone"},
		{"reply missing persona", "/style/reply", `{"context":{"action":"a","summary":"s"}}`, "persona: required"},
		{"reply missing summary", "/style/reply", `{"persona":{},"context":{"action":"a"}}`, "context.summary: required"},
		{"empty body", "/style/reply", ``, "invalid json"},
		{"ask trailing garbage", "/ask", `{"userMessage":"a"} {"junk":`, "invalid json"},
		{"ask second object", "/ask", `{"userMessage":"a"}{"userMessage":"b"}`, "unexpected data"},
		{"nlu trailing brace", "/nlu/parse", `{"text":"hola"}}`, "invalid json"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := replying("never")
			h := newTestRouter(fake)

			rec := do(t, h, http.MethodPost, tc.path, tc.body)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, decodeBody(t, rec)["detail"], tc.detail)
			assert.Empty(t, fake.calls, "provider must not be called")
		})
	}
}

func TestHandler_ParseNLU(t *testing.T) {
	fake := replying(`{"intent":"register_transaction","slots":{"amount":5000,"payment_method":"debit"},"confidence":"0.8"}`)
	h := newTestRouter(fake)

	rec := do(t, h, http.MethodPost, "/nlu/parse", `{"text":"pagué 5000 con débito"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"intent": "register_transaction",
		"slots": {"amount": 5000, "payment_method": "debit"},
		"confidence": 0.8,
		"raw_text": "pagué 5000 con débito"
	}`, rec.Body.String())

	var input map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.calls[0].Messages[1].Text), &input))
	assert.Equal(t, "es-CL", input["locale"])
	assert.Equal(t, "America/Santiago", input["timezone"])
}

func TestHandler_ParseNLU_SlotNumbersPassThrough(t *testing.T) {
	h := newTestRouter(replying(`{"intent":"ask_goal_status","slots":{"goalId":9007199254740993,"amount":1e400}}`))

	rec := do(t, h, http.MethodPost, "/nlu/parse", `{"text":"meta 9007199254740993"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"goalId":9007199254740993`)
	assert.Contains(t, rec.Body.String(), `"amount":1e400`)
}

func TestHandler_ParseNLU_LegacyTZField(t *testing.T) {
	fake := replying(`{"intent":"greeting"}`)
	h := newTestRouter(fake)

	rec := do(t, h, http.MethodPost, "/nlu/parse", `{"text":"hi","tz":"Europe/Madrid","locale":"es-ES"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var input map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.calls[0].Messages[1].Text), &input))
	assert.Equal(t, "Europe/Madrid", input["timezone"])
	assert.Equal(t, "es-ES", input["locale"])
}

func TestHandler_ParseNLU_NonJSONCompletion(t *testing.T) {
	h := newTestRouter(replying("I think the user is saying hello."))

	rec := do(t, h, http.MethodPost, "/nlu/parse", `{"text":"hola"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.HasPrefix(decodeBody(t, rec)["detail"].(string), "NLU error: "))
}

func TestHandler_StyleReply(t *testing.T) {
	h := newTestRouter(replying("hi there"))

	rec := do(t, h, http.MethodPost, "/style/reply",
		`{"persona":{"tone":"warm","emojis":"none"},"context":{"action":"greet","summary":"hello"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"hi there"}`, rec.Body.String())
}

func TestHandler_StyleReply_ProviderError(t *testing.T) {
	h := newTestRouter(failing(ai.ErrEmptyCompletion))

	rec := do(t, h, http.MethodPost, "/style/reply", `{"persona":{},"context":{"action":"a","summary":"s"}}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Reply error: "+ai.ErrEmptyCompletion.Error(), decodeBody(t, rec)["detail"])
}

func TestPersonaDefaults(t *testing.T) {
	intensity := 4
	tone := "playful"
	got := (&personaPayload{Tone: &tone, Intensity: &intensity}).toPersona()

	want := DefaultPersona()
	want.Tone = "playful"
	want.Intensity = 4
	assert.Equal(t, want, got)
}

func TestHandler_Health(t *testing.T) {
	h := newTestRouter(&fakeCompleter{CompleteFunc: func(context.Context, ai.Request) (string, error) {
		t.Fatal("health must not call the provider")
		return "", nil
	}})

	rec := do(t, h, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"ai-service","mode":"generic"}`, rec.Body.String())
}

func TestHandler_UpstreamTimeout(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(stub.Close)

	client := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:  "sk-test",
		Model:   "gpt-3.5-turbo",
		BaseURL: stub.URL + "/v1",
		Timeout: 50 * time.Millisecond,
	}, zap.NewNop())
	h := newTestRouter(client)

	started := time.Now()
	rec := do(t, h, http.MethodPost, "/ask", `{"userMessage":"hello"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Less(t, time.Since(started), time.Second)
	assert.True(t, strings.HasPrefix(decodeBody(t, rec)["detail"].(string), "AI error: "))
}
