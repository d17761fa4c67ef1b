// Package chatcheck runs a minimal chat completion through the official
// OpenAI SDK to confirm a credential set works end to end, beyond what raw
// endpoint probing shows.
package chatcheck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"codexswitch/internal/config"
)

// Usage reports token consumption of the check request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is the outcome of a successful check.
type Result struct {
	Content      string `json:"content"`
	Usage        Usage  `json:"usage"`
	ProcessingMS int64  `json:"processing_ms"`
}

// Run sends a one-message chat completion with the account's credentials.
func Run(ctx context.Context, account config.Account, model string) (*Result, error) {
	startTime := time.Now()

	opts := []option.RequestOption{
		option.WithAPIKey(account.APIKey),
	}
	if account.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(account.BaseURL))
	}
	if account.IsTeam && account.OrgID != "" {
		opts = append(opts, option.WithHeader("OpenAI-Organization", account.OrgID))
	}
	client := openai.NewClient(opts...)

	chatRequest := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("hi"),
		},
	}

	resp, err := client.Chat.Completions.New(ctx, chatRequest)
	processingTime := time.Since(startTime).Milliseconds()

	var responseContent string
	var tokenUsage Usage

	if err == nil && resp != nil {
		if len(resp.Choices) > 0 {
			responseContent = resp.Choices[0].Message.Content
		}
		if resp.Usage.PromptTokens != 0 {
			tokenUsage.PromptTokens = int(resp.Usage.PromptTokens)
			tokenUsage.CompletionTokens = int(resp.Usage.CompletionTokens)
			tokenUsage.TotalTokens = int(resp.Usage.TotalTokens)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %s (processing time: %dms)", categorize(err.Error()), err.Error(), processingTime)
	}

	// If response content is empty, provide fallback
	if responseContent == "" {
		responseContent = "<response content is empty, but request success>"
	}

	return &Result{
		Content:      responseContent,
		Usage:        tokenUsage,
		ProcessingMS: processingTime,
	}, nil
}

// categorize maps common error messages to stable codes.
func categorize(errorMessage string) string {
	lower := strings.ToLower(errorMessage)
	switch {
	case strings.Contains(lower, "authentication") || strings.Contains(lower, "unauthorized"):
		return "AUTHENTICATION_FAILED"
	case strings.Contains(lower, "rate limit"):
		return "RATE_LIMIT_EXCEEDED"
	case strings.Contains(lower, "model"):
		return "MODEL_NOT_AVAILABLE"
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return "CONNECTION_TIMEOUT"
	case strings.Contains(lower, "token"):
		return "INVALID_API_KEY"
	default:
		return "PROBE_FAILED"
	}
}
