package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/ai-service/internal/ai"
)

// Observer — один вызов на запрос к провайдеру. Реализует *metrics.Metrics.
type Observer interface {
	ObserveUpstream(operation string, started time.Time, err error)
}

type service struct {
	ai  ai.Completer
	obs Observer
	log *zap.Logger
	now func() time.Time
}

func NewService(aiClient ai.Completer, obs Observer, log *zap.Logger) Service {
	return newService(aiClient, obs, log)
}

func newService(aiClient ai.Completer, obs Observer, log *zap.Logger) *service {
	return &service{
		ai:  aiClient,
		obs: obs,
		log: log,
		now: time.Now,
	}
}

func (s *service) Ask(ctx context.Context, msg UserMessage) (string, error) {
	reply, err := s.complete(ctx, OpAsk, ai.Request{
		Messages: []ai.Message{{Role: ai.RoleUser, Text: msg.UserMessage}},
	})
	if err != nil {
		return "", &Error{Op: OpAsk, Err: err}
	}
	return reply, nil
}

func (s *service) StyleReply(ctx context.Context, req ReplyRequest) (ReplyResponse, error) {
	// persona пока не попадает в промпт
	s.log.Debug("[svc] style reply",
		zap.String("action", req.Context.Action),
		zap.Any("persona", req.Persona),
	)

	reply, err := s.complete(ctx, OpReply, ai.Request{
		Messages: []ai.Message{{Role: ai.RoleUser, Text: req.Context.Summary}},
	})
	if err != nil {
		return ReplyResponse{}, &Error{Op: OpReply, Err: err}
	}
	return ReplyResponse{Reply: reply}, nil
}

func (s *service) ParseNLU(ctx context.Context, req NluRequest) (NluResponse, error) {
	input := map[string]any{
		"text":     req.Text,
		"locale":   req.Locale,
		"timezone": req.Timezone,
		"today":    s.now().In(req.Location()).Format(time.DateOnly),
	}
	if req.Hints != nil {
		input["hints"] = req.Hints
	}
	if req.Taxonomy != nil {
		input["taxonomy"] = req.Taxonomy
	}

	b, err := json.Marshal(input)
	if err != nil {
		return NluResponse{}, &Error{Op: OpNLU, Err: fmt.Errorf("marshal input: %w", err)}
	}

	raw, err := s.complete(ctx, OpNLU, ai.Request{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Text: NLUSystemPrompt},
			{Role: ai.RoleUser, Text: string(b)},
		},
		Temperature: ai.Temperature(0),
	})
	if err != nil {
		return NluResponse{}, &Error{Op: OpNLU, Err: err}
	}

	resp, err := parseNLU(raw)
	if err != nil {
		s.log.Warn("[NLU][JSON_ERR]", zap.Error(err), zap.String("raw", short(raw)))
		return NluResponse{}, &Error{Op: OpNLU, Err: err}
	}

	text := req.Text
	resp.RawText = &text

	s.log.Info("[NLU] parsed",
		zap.String("intent", resp.Intent),
		zap.Float64("confidence", resp.Confidence),
		zap.Int("slots", len(resp.Slots)),
	)
	return resp, nil
}

func (s *service) complete(ctx context.Context, op Op, req ai.Request) (string, error) {
	started := s.now()
	out, err := s.ai.Complete(ctx, req)
	if s.obs != nil {
		s.obs.ObserveUpstream(string(op), started, err)
	}
	if err != nil {
		s.log.Error("[svc] provider call failed", zap.String("op", string(op)), zap.Error(err))
	}
	return out, err
}

// parseNLU разбирает ответ модели строго: либо полная запись, либо ошибка.
func parseNLU(raw string) (NluResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return NluResponse{}, fmt.Errorf("%w: %v", ErrNotJSONObject, err)
	}
	if fields == nil {
		return NluResponse{}, ErrNotJSONObject
	}

	resp := NluResponse{
		Intent:     IntentUnknown,
		Slots:      map[string]SlotValue{},
		Confidence: 1.0,
	}

	if v, ok := fields["intent"]; ok && !isNull(v) {
		var intent string
		if err := json.Unmarshal(v, &intent); err != nil {
			return NluResponse{}, fmt.Errorf("intent: %w", err)
		}
		if intent != "" {
			resp.Intent = intent
		}
	}

	if v, ok := fields["slots"]; ok && !isNull(v) {
		var slots map[string]SlotValue
		if err := json.Unmarshal(v, &slots); err != nil {
			return NluResponse{}, fmt.Errorf("slots: %w", err)
		}
		resp.Slots = slots
	}

	if v, ok := fields["confidence"]; ok && !isNull(v) {
		c, err := coerceConfidence(v)
		if err != nil {
			return NluResponse{}, fmt.Errorf("confidence: %w", err)
		}
		resp.Confidence = c
	}

	return resp, nil
}

// coerceConfidence — число или строка с числом, зажимается в [0,1].
func coerceConfidence(v json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		var s string
		if errStr := json.Unmarshal(v, &s); errStr != nil {
			return 0, fmt.Errorf("want number, got %s", short(string(v)))
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", s)
		}
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("not a number: NaN")
	}
	return math.Min(1, math.Max(0, f)), nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func short(s string) string {
	if len(s) > 180 {
		return s[:180] + "..."
	}
	return s
}
