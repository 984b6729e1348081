package model

import (
	"strings"
	"time"

	"mindmend/internal/domain"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageMetadata carries the signals an assistant reply was composed from.
type MessageMetadata struct {
	Sentiment  SentimentLabel `json:"sentiment,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	Topics     []Theme        `json:"topics"`
}

// Message represents one turn of a conversation, as rendered by clients.
type Message struct {
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

func NewUserMessage(content string, now time.Time) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, domain.ErrInvalidMessage
	}
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: now.UTC(),
	}, nil
}

func NewAssistantMessage(content string, now time.Time, meta MessageMetadata) Message {
	if meta.Topics == nil {
		meta.Topics = []Theme{}
	}
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: now.UTC(),
		Metadata:  &meta,
	}
}

// RecentMessages returns at most the last n messages of history.
func RecentMessages(history []Message, n int) []Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
