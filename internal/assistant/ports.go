package assistant

import (
	"context"
	"time"
)

const (
	DefaultLocale   = "es-CL"
	DefaultTimezone = "America/Santiago"

	IntentUnknown = "unknown"
)

// Intents — закрытый список меток классификатора.
var Intents = []string{
	"greeting",
	"register_transaction",
	"ask_balance",
	"ask_budget_status",
	"ask_goal_status",
	"modify_persona",
	"smalltalk",
	IntentUnknown,
}

// SlotNames — слоты, которые просим извлечь.
var SlotNames = []string{
	"amount",
	"category",
	"date",
	"payment_method",
	"goalId",
	"persona_property",
}

type UserMessage struct {
	UserMessage string `json:"userMessage"`
}

// NluRequest — вход классификатора. Собирать через NewNluRequest, там дефолты.
type NluRequest struct {
	Text     string
	Locale   string
	Timezone string
	Hints    map[string]any // nil = не передано
	Taxonomy []string       // nil = не передано

	loc *time.Location
}

type NluResponse struct {
	Intent     string               `json:"intent"`
	Slots      map[string]SlotValue `json:"slots"`
	Confidence float64              `json:"confidence"`
	RawText    *string              `json:"raw_text"`
}

// Persona — стиль ответа. /style/reply её принимает, но в промпт она пока не идёт.
type Persona struct {
	Tone      string `json:"tone"`
	Intensity int    `json:"intensity"`
	Formality string `json:"formality"`
	Verbosity string `json:"verbosity"`
	Emojis    string `json:"emojis"`
	Locale    string `json:"locale"`
}

// DefaultPersona — значения для незаполненных полей персоны.
func DefaultPersona() Persona {
	return Persona{
		Tone:      "neutral",
		Intensity: 1,
		Formality: "neutral",
		Verbosity: "balanced",
		Emojis:    "few",
		Locale:    DefaultLocale,
	}
}

type ReplyContext struct {
	Action  string `json:"action"`
	Summary string `json:"summary"`
}

type ReplyRequest struct {
	Persona Persona      `json:"persona"`
	Context ReplyContext `json:"context"`
}

type ReplyResponse struct {
	Reply string `json:"reply"`
}

// Service — один вызов провайдера на запрос, без состояния.
type Service interface {
	Ask(ctx context.Context, msg UserMessage) (string, error)
	ParseNLU(ctx context.Context, req NluRequest) (NluResponse, error)
	StyleReply(ctx context.Context, req ReplyRequest) (ReplyResponse, error)
}
