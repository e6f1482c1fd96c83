package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// MockTranslator mocks a translation backend
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	// FailTimes makes the first n calls for a text fail before succeeding
	FailTimes map[string]int
	Calls     []string
}

// Translate mocks translating text
func (m *MockTranslator) Translate(ctx context.Context, text, language string) (string, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("Translate: %s (->%s)", text, language))

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if n := m.FailTimes[text]; n > 0 {
		m.FailTimes[text] = n - 1
		return "", fmt.Errorf("temporary failure for %q", text)
	}

	if err, ok := m.Errors[text]; ok {
		return "", err
	}

	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}

	return fmt.Sprintf("mock translation of %s", text), nil
}

// Name returns the mock provider name
func (m *MockTranslator) Name() string {
	return "mock"
}

// ChatServer is an httptest server speaking the OpenAI chat completion
// and model listing wire format
type ChatServer struct {
	*httptest.Server

	mu       sync.Mutex
	Requests []ChatRequest
	// Reply maps the user prompt to a completion; unmatched prompts get
	// "translated: <last line of prompt>"
	Reply  func(prompt string) string
	Status int
	Models []string
}

// ChatRequest is the subset of a chat completion request the tests inspect
type ChatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// NewChatServer starts a chat completion server closed at test cleanup
func NewChatServer(t *testing.T) *ChatServer {
	t.Helper()

	s := &ChatServer{Status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// RequestCount returns the number of chat completions served
func (s *ChatServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

func (s *ChatServer) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if strings.HasSuffix(r.URL.Path, "/models") {
		data := make([]map[string]string, 0, len(s.Models))
		for _, id := range s.Models {
			data = append(data, map[string]string{"id": id, "object": "model", "owned_by": "test"})
		}
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	status := s.Status
	s.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "mock failure", "type": "server_error"},
		})
		return
	}

	prompt := ""
	if n := len(req.Messages); n > 0 {
		prompt = req.Messages[n-1].Content
	}

	content := ""
	if s.Reply != nil {
		content = s.Reply(prompt)
	} else {
		lines := strings.Split(strings.TrimSpace(prompt), "\n")
		content = "translated: " + lines[len(lines)-1]
	}

	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   req.Model,
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	})
}

// TestDataGenerator generates test data
type TestDataGenerator struct{}

// GenerateItemRows builds perCategory rows for each category with
// ascending difficulty. Columns: id, category, difficulty, question.
func (g *TestDataGenerator) GenerateItemRows(categories []string, perCategory int) [][]string {
	var rows [][]string
	id := 0
	for _, cat := range categories {
		for i := 0; i < perCategory; i++ {
			rows = append(rows, []string{
				fmt.Sprintf("%d", id),
				cat,
				fmt.Sprintf("%.1f", float64(i%5)/4),
				fmt.Sprintf("%s question %d", cat, i),
			})
			id++
		}
	}
	return rows
}

// GeneratePNGData returns a minimal PNG signature and header chunk
func (g *TestDataGenerator) GeneratePNGData() []byte {
	return []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}
}

// GenerateImageData generates mock JPEG data
func (g *TestDataGenerator) GenerateImageData() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}
}
