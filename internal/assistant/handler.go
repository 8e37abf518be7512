package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Handler struct {
	svc      Service
	validate *validator.Validate
	log      *zap.Logger
}

func NewHandler(svc Service, log *zap.Logger) *Handler {
	v := validator.New()
	// в ошибках валидации — имена полей из json-тегов
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{svc: svc, validate: v, log: log}
}

type askPayload struct {
	UserMessage *string `json:"userMessage" validate:"required"`
}

type nluPayload struct {
	Text     *string        `json:"text" validate:"required"`
	Locale   *string        `json:"locale"`
	Timezone *string        `json:"timezone"`
	TZ       *string        `json:"tz"` // старое имя поля
	Hints    map[string]any `json:"hints"`
	Taxonomy []string       `json:"taxonomy"`
}

type personaPayload struct {
	Tone      *string `json:"tone"`
	Intensity *int    `json:"intensity"`
	Formality *string `json:"formality"`
	Verbosity *string `json:"verbosity"`
	Emojis    *string `json:"emojis"`
	Locale    *string `json:"locale"`
}

type replyContextPayload struct {
	Action  *string `json:"action" validate:"required"`
	Summary *string `json:"summary" validate:"required"`
}

type replyPayload struct {
	Persona *personaPayload      `json:"persona" validate:"required"`
	Context *replyContextPayload `json:"context" validate:"required"`
}

// Ask — POST /ask
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var payload askPayload
	if !h.decode(w, r, &payload) {
		return
	}

	reply, err := h.svc.Ask(r.Context(), UserMessage{UserMessage: *payload.UserMessage})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// ParseNLU — POST /nlu/parse
func (h *Handler) ParseNLU(w http.ResponseWriter, r *http.Request) {
	var payload nluPayload
	if !h.decode(w, r, &payload) {
		return
	}

	tz := deref(payload.Timezone)
	if tz == "" {
		tz = deref(payload.TZ)
	}

	req, err := NewNluRequest(*payload.Text, deref(payload.Locale), tz, payload.Hints, payload.Taxonomy)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.svc.ParseNLU(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// StyleReply — POST /style/reply
func (h *Handler) StyleReply(w http.ResponseWriter, r *http.Request) {
	var payload replyPayload
	if !h.decode(w, r, &payload) {
		return
	}

	req := ReplyRequest{
		Persona: payload.Persona.toPersona(),
		Context: ReplyContext{
			Action:  *payload.Context.Action,
			Summary: *payload.Context.Summary,
		},
	}

	resp, err := h.svc.StyleReply(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health — GET /. Провайдера не трогает.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "ai-service",
		"mode":    "generic",
	})
}

func (p *personaPayload) toPersona() Persona {
	out := DefaultPersona()
	if p.Tone != nil {
		out.Tone = *p.Tone
	}
	if p.Intensity != nil {
		out.Intensity = *p.Intensity
	}
	if p.Formality != nil {
		out.Formality = *p.Formality
	}
	if p.Verbosity != nil {
		out.Verbosity = *p.Verbosity
	}
	if p.Emojis != nil {
		out.Emojis = *p.Emojis
	}
	if p.Locale != nil {
		out.Locale = *p.Locale
	}
	return out
}

// decode читает и валидирует тело; при ошибке 422 уже записан.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		h.fail(w, r, &ValidationError{Msg: "invalid json: " + err.Error()})
		return false
	}
	// после объекта — только пробелы
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		h.fail(w, r, &ValidationError{Msg: "invalid json: unexpected data after top-level value"})
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		h.fail(w, r, &ValidationError{Msg: validationMessage(err)})
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		h.log.Info("[http] rejected request", zap.String("path", r.URL.Path), zap.String("detail", verr.Msg))
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: verr.Msg})
		return
	}

	var serr *Error
	if !errors.As(err, &serr) {
		serr = &Error{Err: err}
	}
	h.log.Error("[http] request failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Detail: serr.Error()})
}

type errorBody struct {
	Detail string `json:"detail"`
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		// первый сегмент — имя go-структуры
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
