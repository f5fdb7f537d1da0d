package backend

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

// openaiBackend talks to OpenAI or any OpenAI-compatible endpoint through the
// eino chat model component.
type openaiBackend struct {
	chatModel model.BaseChatModel
	model     string
}

func newOpenAIBackend(ctx context.Context, opts Options) (Backend, error) {
	cfg := &openai.ChatModelConfig{
		Model:  opts.Model,
		APIKey: opts.APIKey,
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		logger.Error("failed to create chat model", err, logger.String("model", opts.Model))
		return nil, types.NewAppError(types.ErrConfig, "failed to create chat model", err)
	}

	logger.Info("openai backend initialized",
		logger.String("model", opts.Model),
		logger.Bool("customBaseURL", opts.BaseURL != ""))
	return &openaiBackend{chatModel: chatModel, model: opts.Model}, nil
}

func (b *openaiBackend) Name() string {
	return "openai/" + b.model
}

func (b *openaiBackend) Complete(ctx context.Context, system, user string) (string, error) {
	var messages []*schema.Message
	if system != "" {
		messages = append(messages, schema.SystemMessage(system))
	}
	messages = append(messages, schema.UserMessage(user))

	resp, err := b.chatModel.Generate(ctx, messages)
	if err != nil {
		logger.Error("chat completion failed", err, logger.String("model", b.model))
		return "", classifyError(err)
	}
	if resp == nil || resp.Content == "" {
		return "", types.NewAppError(types.ErrEmptyResult, "model returned empty content", nil)
	}

	logger.Debug("chat completion succeeded",
		logger.String("model", b.model),
		logger.Int("responseLength", len(resp.Content)))
	return resp.Content, nil
}
