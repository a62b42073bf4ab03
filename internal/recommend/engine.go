// Package recommend turns draft state into pick advice using the Anthropic
// API. The engine is what the speculative cache computes against ahead of
// the user's turn.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"github.com/adamrubinsky/draft-copilot/internal/league"
	"github.com/adamrubinsky/draft-copilot/internal/models"
)

const (
	// DefaultModel balances latency and quality; recommendations have a
	// hard deadline before the user's pick.
	DefaultModel = "claude-sonnet-4-5"

	defaultMaxTokens   = 1200
	defaultTemperature = 0.3
)

// Messages is the slice of the Anthropic client the engine calls.
type Messages interface {
	New(ctx context.Context, params sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Config tunes the engine.
type Config struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	Settings    league.Settings
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = defaultTemperature
	}
	return c
}

// Engine produces draft recommendations.
type Engine struct {
	cfg      Config
	messages Messages
	now      func() time.Time
}

// New builds an engine from an API key.
func New(apiKey string, cfg Config) *Engine {
	client := sdk.NewClient(option.WithAPIKey(apiKey))
	return NewWithMessages(&client.Messages, cfg)
}

// NewWithMessages builds an engine over an existing messages client.
func NewWithMessages(messages Messages, cfg Config) *Engine {
	return &Engine{
		cfg:      cfg.withDefaults(),
		messages: messages,
		now:      time.Now,
	}
}

// Recommend asks the model for pick advice given the current board and
// roster.
func (e *Engine) Recommend(ctx context.Context, req models.RecommendationRequest) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(e.cfg.Model),
		MaxTokens: e.cfg.MaxTokens,
		System: []sdk.TextBlockParam{
			{Text: BuildSystemPrompt(e.cfg.Settings, e.now())},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(BuildRecommendationPrompt(req))),
		},
		Temperature: sdk.Float(e.cfg.Temperature),
	}

	started := e.now()
	msg, err := e.messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("recommendation for pick %d: %w", req.PickNumber, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Text != "" {
			b.WriteString(block.Text)
		}
	}
	text := b.String()
	if text == "" {
		return "", fmt.Errorf("recommendation for pick %d: empty response", req.PickNumber)
	}

	log.Debug().
		Int("pick", req.PickNumber).
		Int64("input_tokens", msg.Usage.InputTokens).
		Int64("output_tokens", msg.Usage.OutputTokens).
		Dur("elapsed", e.now().Sub(started)).
		Msg("recommendation generated")
	return text, nil
}
