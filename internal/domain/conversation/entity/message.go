package entity

import (
	"sort"
	"time"
)

// MessageType tags a message body
type MessageType string

// Message types
const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

// ParseMessageType validates a message type; empty means text
func ParseMessageType(s string) (MessageType, error) {
	switch MessageType(s) {
	case "":
		return MessageTypeText, nil
	case MessageTypeText, MessageTypeImage:
		return MessageType(s), nil
	default:
		return "", ErrInvalidMessageType
	}
}

// Message is a single chat entry; Body is text or an image URL
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Body           string
	Type           MessageType
	CreatedAt      time.Time
}

// SortMessages orders messages by creation time, keeping insertion order for ties
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}
