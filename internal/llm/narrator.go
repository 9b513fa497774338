// Package llm optionally rewrites the monthly digest narrative with a
// language model. It is bolted on after the facts are computed and
// never influences detection, review, or any count in the report; a
// failure here degrades to the template narrative.
package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ripred/reddit/internal/model"
)

// Narrator generates digest narratives through an OpenAI-compatible
// chat endpoint. Ollama and similar servers work via BaseURL.
type Narrator struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewNarrator builds a narrator from configuration. An empty provider
// means the feature is off and (nil, nil) is returned.
func NewNarrator(cfg model.LLMConfig) (*Narrator, error) {
	if cfg.Provider == "" {
		return nil, nil
	}
	if cfg.Provider != "openai" {
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm enabled but no API key or base URL configured")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	chatModel := cfg.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	return &Narrator{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     chatModel,
		maxTokens: maxTokens,
	}, nil
}

// Narrate writes a short digest narrative from the matched post
// titles. The prompt pins the model to the given titles so it cannot
// invent community events that never happened.
func (n *Narrator) Narrate(ctx context.Context, subreddit, header string, titles []string) (string, error) {
	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     n.model,
		MaxTokens: n.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write concise monthly digest narratives for a subreddit moderation report. Mention only the posts you are given. Do not invent events, statistics, or posts.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(subreddit, header, titles),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm narrate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm narrate: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildPrompt assembles the user prompt from digest facts.
func BuildPrompt(subreddit, header string, titles []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subreddit: r/%s\n", subreddit)
	fmt.Fprintf(&b, "Digest header: %s\n", header)
	fmt.Fprintf(&b, "Digest posts (%d):\n", len(titles))
	for _, title := range titles {
		fmt.Fprintf(&b, "- %s\n", title)
	}
	b.WriteString("\nWrite a narrative summary (2-4 sentences) of this period's digest posts.")
	return b.String()
}
