package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTemperature is used when neither the request nor the provider sets one
	DefaultTemperature = 0.7
	// DefaultTimeout is the default timeout for API calls. Whole-day journals make long prompts.
	DefaultTimeout = 120 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements Completer using OpenAI's chat completions API
type OpenAIProvider struct {
	client      openai.Client
	model       string
	temperature float64
	throttle    *Throttle
	logger      *zap.Logger
	debugMode   bool
}

// OpenAIConfig configures an OpenAIProvider
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	DebugMode   bool
	// Throttle, when set, is waited on before every request
	Throttle *Throttle
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		throttle:    cfg.Throttle,
		logger:      logger,
		debugMode:   cfg.DebugMode,
	}
}

// Model returns the configured model name
func (p *OpenAIProvider) Model() string {
	return p.model
}

func (p *OpenAIProvider) buildParams(req Request) openai.ChatCompletionNewParams {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.temperature
	}
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(temperature),
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params
}

// Complete sends req and returns the content of the first choice
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	if p.throttle != nil {
		if err := p.throttle.Wait(ctx); err != nil {
			return "", fmt.Errorf("%s: %w", req.Operation, err)
		}
	}

	params := p.buildParams(req)
	runID := ExtractRunID(ctx)

	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", req.Operation),
			zap.String("model", p.model),
			zap.Bool("json_mode", req.JSON),
			zap.Int("prompt_length", len(req.User)),
			zap.String("prompt_preview", SanitizePrompt(req.User, true)),
			zap.String("run_id", runID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		p.logger.Warn("llm_api_error",
			zap.String("operation", req.Operation),
			zap.String("model", p.model),
			zap.Error(err),
			zap.String("run_id", runID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("%s: %w", req.Operation, apiErr)
		}
		return "", fmt.Errorf("%s: %w", req.Operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", req.Operation, errors.New(ErrNoChoicesInResponse))
	}

	content := resp.Choices[0].Message.Content
	if p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", req.Operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("run_id", runID),
			zap.Int64("latency_ms", latency.Milliseconds()),
			zap.Int64("total_tokens", resp.Usage.TotalTokens),
		)
	}
	return content, nil
}
