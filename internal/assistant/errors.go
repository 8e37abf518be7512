package assistant

import "errors"

// Op — эндпоинт, где случилась ошибка; его префикс уходит в detail.
type Op string

const (
	OpAsk   Op = "ask"
	OpNLU   Op = "nlu"
	OpReply Op = "reply"
)

func (o Op) prefix() string {
	switch o {
	case OpAsk:
		return "AI error"
	case OpNLU:
		return "NLU error"
	case OpReply:
		return "Reply error"
	default:
		return "error"
	}
}

// Error — любой сбой провайдера или разбора ответа. Ретраев нет.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return e.Op.prefix() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationError — ошибка клиента, до вызова провайдера.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

var ErrNotJSONObject = errors.New("model output is not a JSON object")
