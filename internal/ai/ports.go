package ai

import (
	"context"
	"errors"
)

// ErrEmptyCompletion — провайдер ответил без choices.
var ErrEmptyCompletion = errors.New("ai: completion has no choices")

// Completer — внешний LLM, ничего не знает про NLU и персоны.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Message — универсальный формат сообщения для AI
type Message struct {
	Role string // "user" | "assistant" | "system"
	Text string
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Request — один вызов completion. Temperature == nil — дефолт провайдера.
type Request struct {
	Messages    []Message
	Temperature *float32
}

// Temperature — указатель для Request.Temperature.
func Temperature(t float32) *float32 {
	return &t
}
