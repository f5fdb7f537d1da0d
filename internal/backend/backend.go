// Package backend provides the text-generation backend interface and its
// provider implementations.
package backend

import (
	"context"
	"strings"

	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

// Backend is the capability interface every provider implements.
// Complete sends one system/user prompt pair and returns the generated text.
// Callers depend only on this interface.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

// Options configures provider construction.
type Options struct {
	Provider types.Provider
	APIKey   string
	BaseURL  string
	Model    string
}

// New creates the backend for the configured provider.
// A missing API key or model is a configuration error, never retried.
func New(ctx context.Context, opts Options) (Backend, error) {
	if opts.APIKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "API key is not configured", nil)
	}
	if opts.Model == "" {
		return nil, types.NewAppError(types.ErrConfig, "model is not configured", nil)
	}

	switch opts.Provider {
	case types.ProviderAnthropic:
		return newAnthropicBackend(opts), nil
	case types.ProviderOpenAI, "":
		return newOpenAIBackend(ctx, opts)
	default:
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"unknown backend provider", string(opts.Provider), nil)
	}
}

// TestConnection verifies the backend is reachable and the model responds.
// It asks the model to reply with just "ok" to minimize token usage.
func TestConnection(ctx context.Context, b Backend) error {
	logger.Info("testing backend connection", logger.String("backend", b.Name()))

	reply, err := b.Complete(ctx, "", "Reply with only the word 'ok', nothing else.")
	if err != nil {
		logger.Error("backend connection test failed", err)
		return err
	}

	if !strings.Contains(strings.ToLower(strings.TrimSpace(reply)), "ok") {
		logger.Error("model did not respond with 'ok'", nil, logger.String("reply", reply))
		return types.NewAppErrorWithDetails(types.ErrBackend,
			"unexpected model reply", reply, nil)
	}

	logger.Info("backend connection test successful")
	return nil
}

// classifyError wraps a provider error into the application taxonomy.
// Rate-limit rejections are distinguished so callers can report them as such;
// everything else from the wire is a backend error.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limit") {
		return types.NewAppError(types.ErrRateLimit, "backend rate limit exceeded", err)
	}
	if strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key") {
		return types.NewAppError(types.ErrConfig, "backend rejected the API key", err)
	}
	return types.NewAppError(types.ErrBackend, "backend request failed", err)
}
