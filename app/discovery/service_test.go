package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aiscout/backend/app/chat"
	"github.com/aiscout/backend/app/config"
	"github.com/aiscout/backend/app/gemini"
)

func testPrompts(t *testing.T) *config.Prompts {
	t.Helper()
	prompts, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Failed to load default prompts: %v", err)
	}
	return prompts
}

func newTestService(t *testing.T, baseURL, apiKey string) *Service {
	t.Helper()
	client := gemini.NewClient(baseURL, "gemini-test", apiKey)
	return NewService(client, testPrompts(t), chat.NewRegistry(), chat.NewArticleExtractor("test-agent"))
}

func sseHandler(t *testing.T, chunks []gemini.Chunk) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			payload, err := json.Marshal(chunk)
			if err != nil {
				t.Errorf("Failed to marshal chunk: %v", err)
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
	}
}

func answerChunk(text string) gemini.Chunk {
	return gemini.Chunk{
		Candidates: []gemini.Candidate{{
			Content: &gemini.Content{
				Role:  "model",
				Parts: []gemini.Part{{Text: text}},
			},
		}},
	}
}

func TestBuildSearchPrompt(t *testing.T) {
	prompts := testPrompts(t)
	prompt := buildSearchPrompt(prompts, "quantum error correction")

	if !strings.Contains(prompt, "quantum error correction") {
		t.Error("Expected query in prompt")
	}
	if !strings.Contains(prompt, fmt.Sprintf("%d", prompts.SearchResultCount)) {
		t.Error("Expected result count in prompt")
	}
	if !strings.Contains(prompt, prompts.SourceConstraints) {
		t.Error("Expected source constraints in prompt")
	}
	if !strings.Contains(prompt, "JSON array") {
		t.Error("Expected output format instruction in prompt")
	}
}

func TestBuildRecommendationPrompt(t *testing.T) {
	prompts := testPrompts(t)

	with := buildRecommendationPrompt(prompts, "robotics, RL")
	if !strings.Contains(with, "robotics, RL") {
		t.Error("Expected interests in prompt")
	}

	without := buildRecommendationPrompt(prompts, "")
	if strings.Contains(without, "tailored to these interests") {
		t.Error("Expected no interests clause for empty interests")
	}

	if strings.Contains(with, `"url"`) {
		t.Error("Expected recommendation prompt to omit the url field")
	}
}

func TestMockStream(t *testing.T) {
	service := newTestService(t, "http://unused", "")

	var thinking []string
	var answer string
	for chunk, err := range service.MockStream() {
		if err != nil {
			t.Fatalf("Unexpected stream error: %v", err)
		}
		th, ans := chunk.Split()
		if th != "" {
			thinking = append(thinking, th)
		}
		if ans != "" {
			answer = ans
		}
	}

	if len(thinking) != 4 {
		t.Errorf("Expected 4 thinking chunks, got %d", len(thinking))
	}

	var results []map[string]any
	if err := json.Unmarshal([]byte(answer), &results); err != nil {
		t.Fatalf("Expected answer chunk to carry JSON results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 mock result, got %d", len(results))
	}
	if title, _ := results[0]["title"].(string); !strings.HasPrefix(title, "Attention Is All You Need") {
		t.Errorf("Unexpected mock result title: %q", title)
	}
}

func TestSearchStream_NoKeyServesMock(t *testing.T) {
	service := newTestService(t, "http://unused", "")

	count := 0
	for _, err := range service.SearchStream(context.Background(), "", "anything") {
		if err != nil {
			t.Fatalf("Expected mock fallback, got error %v", err)
		}
		count++
	}

	if count != 5 {
		t.Errorf("Expected 5 mock chunks, got %d", count)
	}
}

func TestSearchStream_CallsModel(t *testing.T) {
	var gotPath string
	var gotReq gemini.GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		sseHandler(t, []gemini.Chunk{answerChunk("[]")})(w, r)
	}))
	defer server.Close()

	service := newTestService(t, server.URL, "key")

	for _, err := range service.SearchStream(context.Background(), "", "ai agents") {
		if err != nil {
			t.Fatalf("Unexpected stream error: %v", err)
		}
	}

	if !strings.Contains(gotPath, "streamGenerateContent") {
		t.Errorf("Expected streaming endpoint, got %q", gotPath)
	}
	if len(gotReq.Tools) != 2 {
		t.Errorf("Expected search and url-context tools enabled, got %+v", gotReq.Tools)
	}
	if gotReq.GenerationConfig == nil || gotReq.GenerationConfig.ThinkingConfig == nil || !gotReq.GenerationConfig.ThinkingConfig.IncludeThoughts {
		t.Error("Expected thinking enabled on the request")
	}
	if gotReq.SystemInstruction == nil {
		t.Error("Expected system instruction on the request")
	}
}

func TestChatStream_RecordsTurns(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []gemini.Chunk{
		answerChunk("The paper "),
		answerChunk("introduced transformers."),
	}))
	defer server.Close()

	service := newTestService(t, server.URL, "key")
	article := chat.Article{Title: "Attention Is All You Need", Source: "arXiv"}

	sessionID, stream := service.ChatStream(context.Background(), "", article, "What did it introduce?")

	var reply strings.Builder
	for chunk, err := range stream {
		if err != nil {
			t.Fatalf("Unexpected stream error: %v", err)
		}
		_, answer := chunk.Split()
		reply.WriteString(answer)
	}

	if reply.String() != "The paper introduced transformers." {
		t.Errorf("Unexpected streamed reply: %q", reply.String())
	}

	messages := service.registry.Messages(sessionID)
	if len(messages) != 2 {
		t.Fatalf("Expected user and assistant turns recorded, got %d", len(messages))
	}
	if messages[0].Role != "user" || messages[0].Content != "What did it introduce?" {
		t.Errorf("Unexpected user turn: %+v", messages[0])
	}
	if messages[1].Role != "assistant" || messages[1].Content != "The paper introduced transformers." {
		t.Errorf("Unexpected assistant turn: %+v", messages[1])
	}
}

func TestChatStream_SameArticleReusesSession(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []gemini.Chunk{answerChunk("ok")}))
	defer server.Close()

	service := newTestService(t, server.URL, "key")
	article := chat.Article{Title: "Same", URL: ""}

	first, stream := service.ChatStream(context.Background(), "", article, "one")
	for range stream {
	}
	second, stream := service.ChatStream(context.Background(), "", article, "two")
	for range stream {
	}

	if first != second {
		t.Errorf("Expected a stable session id, got %q and %q", first, second)
	}
	if service.registry.Count() != 1 {
		t.Errorf("Expected a single session, got %d", service.registry.Count())
	}
	if messages := service.registry.Messages(first); len(messages) != 4 {
		t.Errorf("Expected 4 turns across both exchanges, got %d", len(messages))
	}
}

func TestChatStream_FallbackOnModelError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	service := newTestService(t, server.URL, "key")
	article := chat.Article{Title: "Broken"}

	sessionID, stream := service.ChatStream(context.Background(), "", article, "hello?")

	var reply strings.Builder
	for chunk, err := range stream {
		if err != nil {
			t.Fatalf("Expected fallback chunk instead of error, got %v", err)
		}
		_, answer := chunk.Split()
		reply.WriteString(answer)
	}

	if reply.String() != chatFallbackMessage {
		t.Errorf("Expected apology fallback, got %q", reply.String())
	}

	messages := service.registry.Messages(sessionID)
	if len(messages) != 2 || messages[1].Content != chatFallbackMessage {
		t.Errorf("Expected fallback recorded as assistant turn, got %+v", messages)
	}
}

func TestChatStream_NoKeyFallsBack(t *testing.T) {
	service := newTestService(t, "http://unused", "")

	_, stream := service.ChatStream(context.Background(), "", chat.Article{Title: "NoKey"}, "hi")

	var reply strings.Builder
	for chunk, err := range stream {
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		_, answer := chunk.Split()
		reply.WriteString(answer)
	}

	if reply.String() != chatFallbackMessage {
		t.Errorf("Expected apology fallback without a key, got %q", reply.String())
	}
}

func TestLookupCitations(t *testing.T) {
	var gotReq gemini.GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(gemini.Chunk{
			Candidates: []gemini.Candidate{{
				Content: &gemini.Content{Parts: []gemini.Part{{Text: "https://arxiv.org/abs/1706.03762"}}},
				GroundingMetadata: &gemini.GroundingMetadata{
					GroundingChunks: []gemini.GroundingChunk{
						{Web: &gemini.WebSource{URI: "https://arxiv.org/abs/1706.03762", Title: "arXiv"}},
					},
				},
			}},
		})
	}))
	defer server.Close()

	service := newTestService(t, server.URL, "key")

	urls, err := service.LookupCitations(context.Background(), "", "Attention Is All You Need", "arXiv")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://arxiv.org/abs/1706.03762" {
		t.Errorf("Unexpected citation URLs: %v", urls)
	}

	if len(gotReq.GenerationConfig.StopSequences) != 1 || gotReq.GenerationConfig.StopSequences[0] != "]" {
		t.Errorf("Expected ']' stop sequence, got %v", gotReq.GenerationConfig.StopSequences)
	}
}

func TestLookupCitations_NoKey(t *testing.T) {
	service := newTestService(t, "http://unused", "")

	urls, err := service.LookupCitations(context.Background(), "", "Title", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if urls != nil {
		t.Errorf("Expected no citations without a key, got %v", urls)
	}
}
