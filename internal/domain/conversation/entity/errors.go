package entity

import "errors"

// Domain errors for conversations
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrItemArchived         = errors.New("conversation is archived because the item is archived")
	ErrInvalidRecipient     = errors.New("cannot start a conversation with yourself")
	ErrEmptyMessage         = errors.New("message body cannot be empty")
	ErrInvalidMessageType   = errors.New("message type must be text or image")
)
