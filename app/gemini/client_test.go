package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChunk_Split_ThinkingAndAnswer(t *testing.T) {
	chunk := &Chunk{
		Candidates: []Candidate{{
			Content: &Content{Parts: []Part{
				{Text: "considering sources", Thought: true},
				{Text: "partial answer"},
				{Text: " continues", Thought: false},
			}},
		}},
	}

	thinking, answer := chunk.Split()
	if thinking != "considering sources" {
		t.Errorf("Expected thinking text, got %q", thinking)
	}
	if answer != "partial answer continues" {
		t.Errorf("Expected concatenated answer text, got %q", answer)
	}
}

func TestChunk_Split_ThinkingOnly(t *testing.T) {
	chunk := &Chunk{
		Candidates: []Candidate{{
			Content: &Content{Parts: []Part{{Text: "just thinking", Thought: true}}},
		}},
	}

	thinking, answer := chunk.Split()
	if thinking != "just thinking" {
		t.Errorf("Expected thinking text, got %q", thinking)
	}
	if answer != "" {
		t.Errorf("Expected no answer text, got %q", answer)
	}
}

func TestChunk_Split_FlatTextFallback(t *testing.T) {
	chunk := &Chunk{Text: "legacy flat text"}

	thinking, answer := chunk.Split()
	if thinking != "" {
		t.Errorf("Expected no thinking text, got %q", thinking)
	}
	if answer != "legacy flat text" {
		t.Errorf("Expected flat text as answer, got %q", answer)
	}
}

func TestChunk_Split_Empty(t *testing.T) {
	chunk := &Chunk{}

	thinking, answer := chunk.Split()
	if thinking != "" || answer != "" {
		t.Errorf("Expected empty pair for empty chunk, got %q / %q", thinking, answer)
	}
}

func TestChunk_CitationURLs(t *testing.T) {
	chunk := &Chunk{
		Candidates: []Candidate{{
			GroundingMetadata: &GroundingMetadata{
				GroundingChunks: []GroundingChunk{
					{Web: &WebSource{URI: "https://example.com/a"}},
					{Web: nil},
					{Web: &WebSource{URI: "https://example.com/b"}},
				},
			},
		}},
	}

	urls := chunk.CitationURLs()
	if len(urls) != 2 {
		t.Fatalf("Expected 2 citation URLs, got %d", len(urls))
	}
	if urls[0] != "https://example.com/a" || urls[1] != "https://example.com/b" {
		t.Errorf("Unexpected citation URLs: %v", urls)
	}
}

func TestClient_GenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("Expected API key header, got %q", r.Header.Get("x-goog-api-key"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"thinking...\",\"thought\":true}]}}]}\n\n")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"[{\\\"title\\\":\\\"X\\\"}]\"}]}}]}\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-model", "test-key")

	var chunks []*Chunk
	for chunk, err := range client.GenerateStream(context.Background(), &GenerateRequest{}) {
		if err != nil {
			t.Fatalf("Unexpected stream error: %v", err)
		}
		chunks = append(chunks, chunk)
	}

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}

	thinking, _ := chunks[0].Split()
	if thinking != "thinking..." {
		t.Errorf("Expected thinking chunk first, got %q", thinking)
	}

	_, answer := chunks[1].Split()
	if answer != `[{"title":"X"}]` {
		t.Errorf("Expected answer chunk, got %q", answer)
	}
}

func TestClient_GenerateStream_EarlyExit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 0; i < 100; i++ {
			fmt.Fprintf(w, "data: {\"text\":\"chunk %d\"}\n\n", i)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-model", "test-key")

	count := 0
	for _, err := range client.GenerateStream(context.Background(), &GenerateRequest{}) {
		if err != nil {
			t.Fatalf("Unexpected stream error: %v", err)
		}
		count++
		if count == 3 {
			break
		}
	}

	if count != 3 {
		t.Errorf("Expected early exit after 3 chunks, got %d", count)
	}
}

func TestClient_GenerateStream_NoAPIKey(t *testing.T) {
	client := NewClient("http://localhost:1", "test-model", "")

	var gotErr error
	for _, err := range client.GenerateStream(context.Background(), &GenerateRequest{}) {
		gotErr = err
	}

	if gotErr != ErrNoAPIKey {
		t.Errorf("Expected ErrNoAPIKey, got %v", gotErr)
	}
}

func TestClient_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"invalid key"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-model", "bad-key")

	_, err := client.Generate(context.Background(), &GenerateRequest{})
	if err == nil {
		t.Fatal("Expected error for non-200 response")
	}
}

func TestClient_WithKey(t *testing.T) {
	client := NewClient("http://example.com", "m", "default-key")

	derived := client.WithKey("request-key")
	if derived.APIKey() != "request-key" {
		t.Errorf("Expected derived client to use request key, got %q", derived.APIKey())
	}
	if client.APIKey() != "default-key" {
		t.Errorf("Expected original client unchanged, got %q", client.APIKey())
	}

	same := client.WithKey("")
	if same.APIKey() != "default-key" {
		t.Errorf("Expected empty key to fall back to default, got %q", same.APIKey())
	}
}
