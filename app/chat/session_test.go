package chat

import (
	"testing"

	"github.com/aiscout/backend/app/gemini"
)

func testArticle() Article {
	return Article{
		Title:  "GPT-5 Launch",
		Source: "The Verge",
		Type:   "article",
		URL:    "https://example.com/gpt5",
	}
}

func seedTurns() []gemini.Content {
	return []gemini.Content{
		{Role: "user", Parts: []gemini.Part{{Text: "Please act according to these instructions: ..."}}},
		{Role: "model", Parts: []gemini.Part{{Text: "I understand."}}},
	}
}

func TestSessionID_Deterministic(t *testing.T) {
	a := testArticle()
	b := testArticle()

	if SessionID(a) != SessionID(b) {
		t.Error("Expected identical articles to map to the same session id")
	}

	b.URL = "https://example.com/other"
	if SessionID(a) == SessionID(b) {
		t.Error("Expected different URLs to map to different session ids")
	}
}

func TestSession_Messages_SkipsSeedTurns(t *testing.T) {
	session := NewSession("id", testArticle(), seedTurns())
	session.Append("user", "What happened?")
	session.Append("model", "The launch was announced.")

	messages := session.Messages()
	if len(messages) != 2 {
		t.Fatalf("Expected 2 visible messages, got %d", len(messages))
	}
	if messages[0].Role != "user" || messages[0].Content != "What happened?" {
		t.Errorf("Unexpected first message: %+v", messages[0])
	}
	if messages[1].Role != "assistant" {
		t.Errorf("Expected model role converted to 'assistant', got %q", messages[1].Role)
	}
}

func TestSession_Append_IgnoresEmpty(t *testing.T) {
	session := NewSession("id", testArticle(), nil)
	session.Append("model", "")

	if len(session.History()) != 0 {
		t.Error("Expected empty turn to be dropped")
	}
}

func TestRegistry_GetOrCreate(t *testing.T) {
	registry := NewRegistry()

	created := 0
	build := func() *Session {
		created++
		return NewSession("s1", testArticle(), seedTurns())
	}

	first := registry.GetOrCreate("s1", build)
	second := registry.GetOrCreate("s1", build)

	if first != second {
		t.Error("Expected the same session instance on repeat lookups")
	}
	if created != 1 {
		t.Errorf("Expected session to be created once, got %d", created)
	}
}

func TestRegistry_DeleteRemovesOnlyTarget(t *testing.T) {
	registry := NewRegistry()
	registry.GetOrCreate("s1", func() *Session {
		s := NewSession("s1", testArticle(), nil)
		s.Append("user", "hello")
		return s
	})
	registry.GetOrCreate("s2", func() *Session {
		s := NewSession("s2", testArticle(), nil)
		s.Append("user", "other")
		return s
	})

	registry.Delete("s1")

	if messages := registry.Messages("s1"); len(messages) != 0 {
		t.Errorf("Expected empty history for cleared session, got %v", messages)
	}
	if messages := registry.Messages("s2"); len(messages) != 1 {
		t.Errorf("Expected other session intact, got %v", messages)
	}
	if registry.Count() != 1 {
		t.Errorf("Expected 1 remaining session, got %d", registry.Count())
	}
}

func TestRegistry_Clear(t *testing.T) {
	registry := NewRegistry()
	registry.GetOrCreate("s1", func() *Session { return NewSession("s1", testArticle(), nil) })
	registry.GetOrCreate("s2", func() *Session { return NewSession("s2", testArticle(), nil) })

	registry.Clear()

	if registry.Count() != 0 {
		t.Errorf("Expected empty registry after clear, got %d", registry.Count())
	}
}

func TestRegistry_Messages_UnknownID(t *testing.T) {
	registry := NewRegistry()

	messages := registry.Messages("missing")
	if messages == nil {
		t.Error("Expected empty list, not nil, for unknown session")
	}
	if len(messages) != 0 {
		t.Errorf("Expected no messages, got %v", messages)
	}
}
