package translation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Supported providers
const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
)

// DeepSeekBaseURL is the OpenAI compatible endpoint of DeepSeek
const DeepSeekBaseURL = "https://api.deepseek.com"

// ErrMissingAPIKey is returned when the selected provider has no key
var ErrMissingAPIKey = errors.New("API key not found")

const systemPrompt = "You are a helpful translation assistant."

var validate = validator.New(validator.WithRequiredStructEnabled())

// Client translates a single text into language
type Client interface {
	Translate(ctx context.Context, text, language string) (string, error)
	Name() string
}

// ProviderConfig selects and configures the translation backend
type ProviderConfig struct {
	Provider  string `validate:"oneof=deepseek openai gemini"`
	APIKey    string
	Model     string
	BaseURL   string `validate:"omitempty,url"`
	MaxTokens int    `validate:"gte=0"`
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case ProviderDeepSeek:
		return "deepseek-chat"
	case ProviderGemini:
		return "gemini-2.0-flash"
	default:
		return openai.GPT4oMini
	}
}

// APIKeyEnv returns the environment variable holding the provider's key
func APIKeyEnv(provider string) string {
	switch provider {
	case ProviderDeepSeek:
		return "DEEPSEEK_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// Prompt builds the user message asking for a bare translation
func Prompt(text, language string) string {
	return fmt.Sprintf("Translate the following English text to %s, providing only the translated text and nothing else:\n\n---\n\n%s", language, text)
}

// NewClient creates the client for cfg.Provider
func NewClient(ctx context.Context, cfg ProviderConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingAPIKey, APIKeyEnv(cfg.Provider))
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid provider config: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	if cfg.Provider == ProviderGemini {
		return NewGeminiClient(ctx, cfg)
	}
	return NewOpenAIClient(cfg), nil
}

// OpenAIClient talks to any endpoint implementing the OpenAI chat API
type OpenAIClient struct {
	name      string
	model     string
	maxTokens int
	client    *openai.Client
}

// NewOpenAIClient creates a chat completion client. DeepSeek gets its
// base URL unless cfg.BaseURL overrides it.
func NewOpenAIClient(cfg ProviderConfig) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	switch {
	case cfg.BaseURL != "":
		clientCfg.BaseURL = cfg.BaseURL
	case cfg.Provider == ProviderDeepSeek:
		clientCfg.BaseURL = DeepSeekBaseURL
	}

	return &OpenAIClient{
		name:      cfg.Provider,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    openai.NewClientWithConfig(clientCfg),
	}
}

// Translate requests a deterministic translation of text
func (c *OpenAIClient) Translate(ctx context.Context, text, language string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: Prompt(text, language)},
		},
		MaxTokens: c.maxTokens,
		// zero would be dropped by omitempty
		Temperature: math.SmallestNonzeroFloat32,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", c.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	translation := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translation == "" {
		return "", fmt.Errorf("empty translation returned")
	}
	return translation, nil
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return c.name
}

// GeminiClient translates with the Gemini API
type GeminiClient struct {
	model     string
	maxTokens int
	client    *genai.Client
}

// NewGeminiClient creates a Gemini API client
func NewGeminiClient(ctx context.Context, cfg ProviderConfig) (*GeminiClient, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    client,
	}, nil
}

// Translate requests a deterministic translation of text
func (c *GeminiClient) Translate(ctx context.Context, text, language string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(Prompt(text, language)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0),
			MaxOutputTokens:   int32(c.maxTokens),
		})
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	translation := strings.TrimSpace(resp.Text())
	if translation == "" {
		return "", fmt.Errorf("no translation returned")
	}
	return translation, nil
}

// Name returns the provider name
func (c *GeminiClient) Name() string {
	return ProviderGemini
}
