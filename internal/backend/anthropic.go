package backend

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

const anthropicMaxTokens = 4096

// anthropicBackend talks to the Anthropic Messages API.
type anthropicBackend struct {
	client anthropic.Client
	model  string
}

func newAnthropicBackend(opts Options) Backend {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	logger.Info("anthropic backend initialized",
		logger.String("model", opts.Model),
		logger.Bool("customBaseURL", opts.BaseURL != ""))
	return &anthropicBackend{
		client: anthropic.NewClient(reqOpts...),
		model:  opts.Model,
	}
}

func (b *anthropicBackend) Name() string {
	return "anthropic/" + b.model
}

func (b *anthropicBackend) Complete(ctx context.Context, system, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("message request failed", err, logger.String("model", b.model))
		return "", classifyError(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if text == "" {
		return "", types.NewAppError(types.ErrEmptyResult, "model returned empty content", nil)
	}

	logger.Debug("message request succeeded",
		logger.String("model", b.model),
		logger.Int("responseLength", len(text)))
	return text, nil
}
