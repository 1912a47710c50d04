package safety

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	apperrors "github.com/ytsafecheck/backend/internal/errors"
	"github.com/ytsafecheck/backend/internal/logger"
	"github.com/ytsafecheck/backend/internal/transcript"
)

const (
	defaultLLMModel        = "llama3"
	defaultTranscriptLimit = 12000
)

// ChatCompleter is the subset of the OpenAI client used for classification.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMConfig configures an LLMChecker. BaseURL points at any
// OpenAI-compatible endpoint, e.g. a local LLaMA 3 server.
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	// MaxTranscriptChars bounds the transcript sent to the model.
	MaxTranscriptChars int
	Retry              *apperrors.RetryConfig
}

// LLMChecker classifies a video's captions with a chat model.
type LLMChecker struct {
	transcripts transcript.Source
	client      ChatCompleter
	model       string
	maxChars    int
	retry       *apperrors.RetryConfig
	log         *logger.Logger
}

// NewLLMChecker creates a checker that talks to cfg.BaseURL.
func NewLLMChecker(source transcript.Source, cfg LLMConfig) *LLMChecker {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return NewLLMCheckerWithClient(source, openai.NewClientWithConfig(clientCfg), cfg)
}

// NewLLMCheckerWithClient creates a checker using an existing client.
func NewLLMCheckerWithClient(source transcript.Source, client ChatCompleter, cfg LLMConfig) *LLMChecker {
	model := cfg.Model
	if model == "" {
		model = defaultLLMModel
	}
	maxChars := cfg.MaxTranscriptChars
	if maxChars <= 0 {
		maxChars = defaultTranscriptLimit
	}
	retry := cfg.Retry
	if retry == nil {
		retry = apperrors.ClassifierRetryConfig()
	}
	return &LLMChecker{
		transcripts: source,
		client:      client,
		model:       model,
		maxChars:    maxChars,
		retry:       retry,
		log:         logger.Default().WithComponent("llm_checker"),
	}
}

// Source implements Named.
func (c *LLMChecker) Source() string { return SourceLLM }

type llmVerdict struct {
	IsSafe     bool            `json:"isSafe"`
	Categories map[string]bool `json:"categories"`
}

// Check fetches captions and asks the model for a verdict.
func (c *LLMChecker) Check(ctx context.Context, videoID string) (*Result, error) {
	tr, err := c.transcripts.Fetch(ctx, videoID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if transcript.Permanent(err) {
			return nil, apperrors.New(apperrors.CodeTranscriptUnavailable, err.Error(),
				apperrors.CategoryClient, http.StatusUnprocessableEntity).WithCause(err)
		}
		return nil, apperrors.TranscriptUnavailable("failed to fetch transcript").WithCause(err)
	}

	verdict, err := apperrors.RetryWithResult(ctx, c.retry, func(ctx context.Context) (*llmVerdict, error) {
		return c.classify(ctx, tr.Text)
	})
	if err != nil {
		return nil, err
	}

	categories := NewCategories()
	for name, flagged := range verdict.Categories {
		cat, err := ParseCategory(name)
		if err != nil {
			c.log.Debug(ctx, "ignoring unknown category from model", map[string]any{"category": name})
			continue
		}
		categories[cat] = flagged
	}

	return &Result{
		IsSafe:     verdict.IsSafe,
		VideoID:    videoID,
		Transcript: tr.Text,
		Title:      tr.Title,
		Categories: categories,
	}, nil
}

func (c *LLMChecker) classify(ctx context.Context, text string) (*llmVerdict, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: truncateRunes(text, c.maxChars)},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var apiErr *openai.APIError
		if stderrors.As(err, &apiErr) && !apperrors.HTTPRetryableStatus(apiErr.HTTPStatusCode) {
			return nil, apperrors.New(apperrors.CodeClassifierError,
				fmt.Sprintf("classifier rejected request: %s", apiErr.Message),
				apperrors.CategoryClient, http.StatusBadGateway).WithCause(err)
		}
		return nil, apperrors.ClassifierError("classifier request failed").WithCause(err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.ClassifierError("classifier returned no choices")
	}

	var verdict llmVerdict
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &verdict); err != nil {
		return nil, apperrors.ClassifierError("classifier returned malformed JSON").WithCause(err)
	}
	return &verdict, nil
}

func systemPrompt() string {
	var b strings.Builder
	b.WriteString("You review YouTube video transcripts and decide whether the video is suitable for children. ")
	b.WriteString("Reply with a JSON object {\"isSafe\": boolean, \"categories\": {<name>: boolean}}. ")
	b.WriteString("Use exactly these category names:\n")
	for _, cat := range AllCategories {
		fmt.Fprintf(&b, "- %s: %s\n", cat, cat.Phrase())
	}
	b.WriteString("If isSafe is false, set at least one category to true.")
	return b.String()
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
