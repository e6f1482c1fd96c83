package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister lists the models of an OpenAI compatible endpoint
type Lister struct {
	client *openai.Client
	out    io.Writer
}

// NewLister creates a model lister. An empty baseURL uses OpenAI.
func NewLister(apiKey, baseURL string, out io.Writer) *Lister {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Lister{
		client: openai.NewClientWithConfig(cfg),
		out:    out,
	}
}

// ChatModels returns the sorted ids of the chat models
func (l *Lister) ChatModels(ctx context.Context) ([]string, error) {
	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var chat []string
	for _, model := range models.Models {
		if isChatModel(model.ID) {
			chat = append(chat, model.ID)
		}
	}
	sort.Strings(chat)
	return chat, nil
}

// ListAvailableModels prints the chat models usable for translation
func (l *Lister) ListAvailableModels(ctx context.Context, provider string) error {
	chat, err := l.ChatModels(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(l.out, "Chat/Translation Models (%s):\n", provider)
	if len(chat) == 0 {
		fmt.Fprintln(l.out, "  No chat models found")
		return nil
	}
	for _, model := range chat {
		fmt.Fprintf(l.out, "  %s\n", model)
	}
	return nil
}

func isChatModel(id string) bool {
	for _, skip := range []string{"tts", "audio", "dall-e", "whisper", "embedding", "transcribe", "realtime", "image"} {
		if strings.Contains(id, skip) {
			return false
		}
	}
	return strings.Contains(id, "gpt") || strings.Contains(id, "chat") || strings.Contains(id, "reasoner") ||
		strings.HasPrefix(id, "o1") || strings.HasPrefix(id, "o3") || strings.HasPrefix(id, "o4")
}
