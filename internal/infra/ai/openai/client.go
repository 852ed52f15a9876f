package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/shopdraw/drawcheck/internal/domain/analysis"
	"github.com/shopdraw/drawcheck/internal/infra/ai/prompt"
)

type Client struct {
	*openai.Client
	model     string
	maxTokens int
}

// NewClient builds the model client. baseURL is empty in production and
// points at a fake server in tests.
func NewClient(apiKey, baseURL, model string, maxTokens int) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4o"
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), model: model, maxTokens: maxTokens}
}

// AnalyzeBytes sends the PDF inline as a base64 data URL attachment.
func (c *Client) AnalyzeBytes(ctx context.Context, data []byte, filename string, pctx analysis.ProjectContext) (*analysis.Result, error) {
	dataURL := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data)
	user := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt.GetUserPrompt(pctx)},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
		},
	}
	return c.complete(ctx, user)
}

// AnalyzeURL sends a fetchable URL in the prompt text instead of inline
// bytes; used for documents staged in the blob store.
func (c *Client) AnalyzeURL(ctx context.Context, url string, pctx analysis.ProjectContext) (*analysis.Result, error) {
	user := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.GetUserPromptForURL(url, pctx),
	}
	return c.complete(ctx, user)
}

func (c *Client) complete(ctx context.Context, user openai.ChatCompletionMessage) (*analysis.Result, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			user,
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(c.model, "o1") || strings.HasPrefix(c.model, "o3") || strings.HasPrefix(c.model, "o4") || strings.HasPrefix(c.model, "gpt-5") {
		req.MaxCompletionTokens = c.maxTokens
	} else {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classifyProviderError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, analysis.NewUnparsableError("")
	}
	return ParseResult(resp.Choices[0].Message.Content)
}

var _ analysis.Analyzer = (*Client)(nil)

var billingHints = []string{"credit balance", "insufficient credits", "billing"}

// classifyProviderError prefers the provider's structured error code and
// falls back to case-insensitive substring matching on the message.
func classifyProviderError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 402 {
			return analysis.ErrUpstreamBilling
		}
		if code, ok := apiErr.Code.(string); ok {
			if code == "insufficient_quota" || strings.HasPrefix(code, "billing") {
				return analysis.ErrUpstreamBilling
			}
		}
		if matchesBillingHint(apiErr.Message) {
			return analysis.ErrUpstreamBilling
		}
		return fmt.Errorf("model request failed: %w", err)
	}
	if matchesBillingHint(err.Error()) {
		return analysis.ErrUpstreamBilling
	}
	return fmt.Errorf("model request failed: %w", err)
}

func matchesBillingHint(msg string) bool {
	lower := strings.ToLower(msg)
	for _, h := range billingHints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}
