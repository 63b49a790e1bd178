package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultModel is the deployment identifier used when none is
// configured.
const DefaultModel = "gpt-4o"

// Options configures the OpenAI-compatible completion client.
type Options struct {
	Model     string // model or Azure deployment name
	APIKey    string
	BaseURL   string // optional, for Azure or other compatible endpoints
	CacheSize int    // response cache entries; <=0 uses DefaultCacheSize
}

// OpenAIClient implements Client against an OpenAI-compatible chat
// completion endpoint through langchaingo. Temperature is fixed at zero:
// upgrades should be as deterministic as the service allows.
type OpenAIClient struct {
	llm   llms.Model
	model string
	cache *Cache
}

// NewOpenAIClient creates a completion client for the configured model.
func NewOpenAIClient(opts Options) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	oaOpts := []openai.Option{
		openai.WithModel(model),
		openai.WithToken(opts.APIKey),
	}
	if opts.BaseURL != "" {
		oaOpts = append(oaOpts, openai.WithBaseURL(opts.BaseURL))
	}

	client, err := openai.New(oaOpts...)
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}

	return &OpenAIClient{
		llm:   client,
		model: model,
		cache: NewCache(opts.CacheSize),
	}, nil
}

// Complete sends the system and user messages and returns the first
// choice's content. Any transport or protocol failure is returned as a
// classified *Error.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	key := PromptKey(system, user)
	if resp, ok := c.cache.Get(key); ok {
		log.Debug().Str("model", c.model).Msg("completion served from cache")
		return resp, nil
	}

	resp, err := c.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}, llms.WithTemperature(0))
	if err != nil {
		return "", Classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindMalformed, Err: fmt.Errorf("no choices in response")}
	}

	content := resp.Choices[0].Content
	c.cache.Set(key, content)
	return content, nil
}

// Model returns the configured model identifier.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Close releases client resources. The underlying langchaingo client
// holds no connections that need explicit shutdown.
func (c *OpenAIClient) Close() error {
	return nil
}
