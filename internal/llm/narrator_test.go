package llm

import (
	"strings"
	"testing"

	"github.com/ripred/reddit/internal/model"
)

func TestNewNarrator_DisabledWithoutProvider(t *testing.T) {
	n, err := NewNarrator(model.LLMConfig{})
	if err != nil {
		t.Fatalf("Expected disabled narrator without error, got %v", err)
	}
	if n != nil {
		t.Error("Expected nil narrator when provider is empty")
	}
}

func TestNewNarrator_RejectsUnknownProvider(t *testing.T) {
	if _, err := NewNarrator(model.LLMConfig{Provider: "claude"}); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}

func TestNewNarrator_RequiresKeyOrBaseURL(t *testing.T) {
	if _, err := NewNarrator(model.LLMConfig{Provider: "openai"}); err == nil {
		t.Error("Expected error without API key or base URL")
	}

	n, err := NewNarrator(model.LLMConfig{Provider: "openai", BaseURL: "http://localhost:11434/v1"})
	if err != nil {
		t.Fatalf("Expected base URL alone to be enough (Ollama case), got %v", err)
	}
	if n == nil {
		t.Fatal("Expected narrator")
	}
}

func TestBuildPrompt_PinsToGivenTitles(t *testing.T) {
	prompt := BuildPrompt("arduino", "Monthly Digest - July", []string{"Post one", "Post two"})

	for _, want := range []string{"r/arduino", "Monthly Digest - July", "- Post one", "- Post two", "(2)"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
}
