package insights

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/terraincognita07/cyclesense/internal/logging"
	"go.uber.org/zap"
)

var (
	ErrUpstreamRateLimited = errors.New("insights provider rate limit exceeded")
	ErrCreditsExhausted    = errors.New("insights provider credits exhausted")
	ErrEmptyCompletion     = errors.New("insights provider returned no choices")
)

type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// OpenAIGenerator talks to any OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIGenerator(options OpenAIOptions) (*OpenAIGenerator, error) {
	if strings.TrimSpace(options.APIKey) == "" {
		return nil, errors.New("insights api key is required")
	}
	if options.Model == "" {
		options.Model = openai.GPT4oMini
	}

	clientConfig := openai.DefaultConfig(options.APIKey)
	if options.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(options.BaseURL, "/")
	}
	if options.HTTPClient != nil {
		clientConfig.HTTPClient = options.HTTPClient
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  options.Model,
		logger: logging.OrNop(options.Logger).Named("insights"),
	}, nil
}

func (generator *OpenAIGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	generator.logger.Debug("requesting completion", zap.String("model", generator.model))

	resp, err := generator.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: generator.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
	})
	if err != nil {
		generator.logger.Warn("completion failed", zap.Error(err))
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var requestErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &requestErr):
		status = requestErr.HTTPStatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ErrUpstreamRateLimited, err)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %v", ErrCreditsExhausted, err)
	default:
		return fmt.Errorf("chat completion failed: %w", err)
	}
}
