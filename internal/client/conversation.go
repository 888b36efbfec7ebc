package client

import (
	"strings"
	"sync"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the local chat transcript.
type ChatMessage struct {
	Role      Role
	Content   string
	Symbols   []string
	Timestamp time.Time
}

// Conversation is an append-only chat transcript for one CLI session.
type Conversation struct {
	mu       sync.Mutex
	messages []ChatMessage
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Record appends the user's transcription and the assistant's analysis from a
// successful response. Blank parts are skipped and failed responses add nothing.
// It returns the messages that were added.
func (c *Conversation) Record(resp *AnalysisResponse, at time.Time) []ChatMessage {
	if resp == nil || !resp.Success {
		return nil
	}

	var added []ChatMessage
	if text := strings.TrimSpace(resp.Transcription); text != "" {
		added = append(added, ChatMessage{Role: RoleUser, Content: text, Timestamp: at})
	}
	if text := strings.TrimSpace(resp.Analysis); text != "" {
		added = append(added, ChatMessage{Role: RoleAssistant, Content: text, Symbols: resp.Symbols, Timestamp: at})
	}

	c.mu.Lock()
	c.messages = append(c.messages, added...)
	c.mu.Unlock()

	return added
}

func (c *Conversation) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}
