package entity

import "time"

// UserRef is the public part of a participant or sender
type UserRef struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	IsArchived bool   `json:"isArchived"`
}

// ItemRef is the part of an item shown next to a conversation
type ItemRef struct {
	ID    string   `json:"_id"`
	Name  string   `json:"name"`
	Image []string `json:"image"`
	Price float64  `json:"price"`
}

// MessageRef is the last message preview
type MessageRef struct {
	ID   string `json:"_id"`
	Body string `json:"body"`
}

// ConversationView is a conversation with its references populated
type ConversationView struct {
	ID           string      `json:"id"`
	Participants []UserRef   `json:"participants"`
	Item         *ItemRef    `json:"item"`
	LastMessage  *MessageRef `json:"lastMessage"`
	LastUpdated  time.Time   `json:"lastUpdated"`
	CreatedAt    time.Time   `json:"createdAt"`
	IsArchived   bool        `json:"isArchived"`
}

// SenderRef identifies a message author
type SenderRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// MessageView is a message with its sender populated
type MessageView struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation"`
	Sender         SenderRef   `json:"sender"`
	Body           string      `json:"body"`
	Type           MessageType `json:"type"`
	CreatedAt      time.Time   `json:"createdAt"`
}
