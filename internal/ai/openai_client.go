package ai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // пусто = api.openai.com
	Timeout time.Duration
}

type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// NewOpenAIClient — один клиент на процесс. Пустой APIKey допустим:
// провайдер отклонит первый запрос.
func NewOpenAIClient(cfg OpenAIConfig, log *zap.Logger) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		log:     log,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	// обрыв клиента не прерывает вызов, прерывает только таймаут
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Text,
		})
	}

	creq := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	}
	if req.Temperature != nil {
		creq.Temperature = *req.Temperature
		// в go-openai temperature с omitempty: 0 просто выкинется
		if creq.Temperature == 0 {
			creq.Temperature = math.SmallestNonzeroFloat32
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		c.log.Warn("[ai] openai error", zap.String("model", c.model), zap.Error(err))
		return "", fmt.Errorf("openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		c.log.Warn("[ai] empty choices", zap.String("model", c.model))
		return "", ErrEmptyCompletion
	}

	raw := resp.Choices[0].Message.Content

	c.log.Debug("[ai] raw completion",
		zap.String("model", c.model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.String("content", raw),
	)

	return raw, nil
}
