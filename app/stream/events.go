package stream

import (
	"encoding/json"

	"github.com/aiscout/backend/app/content"
)

// EventType discriminates the events a streaming request can emit.
type EventType string

const (
	EventThought         EventType = "thought"
	EventParsingComplete EventType = "parsing_complete"
	EventResults         EventType = "results"
	EventChatChunk       EventType = "chat_chunk"
	EventChatThought     EventType = "chat_thought"
	EventChatComplete    EventType = "chat_complete"
	EventComplete        EventType = "complete"
	EventError           EventType = "error"
)

// Event is one server-push message. Exactly one terminal event (complete,
// chat_complete or error) closes every request; nothing follows it.
type Event struct {
	Type         EventType
	Content      any
	FullResponse string
}

func Thought(text string) Event {
	return Event{Type: EventThought, Content: text}
}

func ParsingComplete(count int) Event {
	return Event{Type: EventParsingComplete, Content: count}
}

func Results(items []content.Item) Event {
	return Event{Type: EventResults, Content: items}
}

func ChatChunk(text string) Event {
	return Event{Type: EventChatChunk, Content: text}
}

func ChatThought(text string) Event {
	return Event{Type: EventChatThought, Content: text}
}

func ChatComplete(fullResponse string) Event {
	return Event{Type: EventChatComplete, FullResponse: fullResponse}
}

func Complete() Event {
	return Event{Type: EventComplete}
}

func Error(message string) Event {
	return Event{Type: EventError, Content: message}
}

// Terminal reports whether the event closes the request.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventChatComplete || e.Type == EventError
}

// MarshalJSON renders the wire shape per type: complete carries only its type,
// chat_complete carries full_response, everything else carries content. A
// content field is always present for the types that have one, even when the
// value is zero or empty.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventComplete:
		return json.Marshal(struct {
			Type EventType `json:"type"`
		}{e.Type})
	case EventChatComplete:
		return json.Marshal(struct {
			Type         EventType `json:"type"`
			FullResponse string    `json:"full_response"`
		}{e.Type, e.FullResponse})
	default:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Content any       `json:"content"`
		}{e.Type, e.Content})
	}
}
