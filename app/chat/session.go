package chat

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"

	"github.com/aiscout/backend/app/gemini"
)

// Article is the context object a conversation is anchored to.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Type        string `json:"type"`
	URL         string `json:"url"`
}

// SessionID derives a deterministic session key from the article's identity,
// so repeated conversations about the same article reuse state.
func SessionID(article Article) string {
	hash := sha256.Sum256([]byte(article.Title + article.URL))
	return fmt.Sprintf("article_%x", hash[:8])
}

// Message is one conversation turn in the client-facing history format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session holds the ordered conversation history for one article, seeded with
// system-preamble and article-context turns that are hidden from the
// client-facing history.
type Session struct {
	ID      string
	Article Article

	mu      sync.Mutex
	seedLen int
	history []gemini.Content
}

// NewSession creates a session seeded with the given preamble turns.
func NewSession(id string, article Article, seed []gemini.Content) *Session {
	return &Session{
		ID:      id,
		Article: article,
		seedLen: len(seed),
		history: seed,
	}
}

// Append records one turn. Role is "user" or "model".
func (s *Session) Append(role, text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, gemini.Content{
		Role:  role,
		Parts: []gemini.Part{{Text: text}},
	})
}

// History returns a copy of the full conversation including seed turns, in the
// shape sent to the model.
func (s *Session) History() []gemini.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gemini.Content, len(s.history))
	copy(out, s.history)
	return out
}

// Messages returns the client-facing history: seed turns are skipped, the
// model role is presented as "assistant", and empty turns are dropped.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]Message, 0, len(s.history))
	for i, turn := range s.history {
		if i < s.seedLen {
			continue
		}

		var text strings.Builder
		for _, part := range turn.Parts {
			text.WriteString(part.Text)
		}
		content := strings.TrimSpace(text.String())
		if content == "" {
			continue
		}

		role := turn.Role
		if role == "model" {
			role = "assistant"
		}
		messages = append(messages, Message{Role: role, Content: content})
	}

	return messages
}

// Registry is the process-wide session store, keyed by session id. Sessions
// are created lazily on first message and removed only by explicit clears.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session for id, if present.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

// GetOrCreate returns the existing session for id, or stores and returns the
// session built by create. Under concurrent creation of the same id the first
// stored session wins.
func (r *Registry) GetOrCreate(id string, create func() *Session) *Session {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return session
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		return session
	}
	session = create()
	r.sessions[id] = session
	return session
}

// Delete removes a single session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Clear removes all sessions.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]*Session)
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Messages returns the client-facing history for a session, or an empty list
// for an unknown id.
func (r *Registry) Messages(id string) []Message {
	session, ok := r.Get(id)
	if !ok {
		return []Message{}
	}
	return session.Messages()
}
