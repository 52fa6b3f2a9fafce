package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vadim/campus-market/internal/domain/conversation/entity"
)

// ConversationRepository defines the interface for conversation storage.
// Lookups return (nil, nil) when nothing matches.
type ConversationRepository interface {
	Create(ctx context.Context, conv *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	FindByParticipants(ctx context.Context, a, b string) (*entity.Conversation, error)
	GetByParticipantID(ctx context.Context, userID string) ([]entity.Conversation, error)
	SetItem(ctx context.Context, id, itemID string) error
	SetLastMessage(ctx context.Context, id, messageID string, at time.Time) error
	DeleteByParticipantID(ctx context.Context, userID string) (int64, error)
}

// MessageRepository defines the interface for message storage.
// GetByConversationID returns messages oldest first.
type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) error
	GetByIDs(ctx context.Context, ids []string) ([]entity.Message, error)
	GetByConversationID(ctx context.Context, conversationID string) ([]entity.Message, error)
	DeleteBySenderID(ctx context.Context, senderID string) (int64, error)
}

// Service handles conversation and messaging business logic
type Service struct {
	convs ConversationRepository
	msgs  MessageRepository
	now   func() time.Time
}

// New creates a new conversation service
func New(convs ConversationRepository, msgs MessageRepository) *Service {
	return &Service{convs: convs, msgs: msgs, now: time.Now}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// FindOrCreateInput represents input for opening a conversation
type FindOrCreateInput struct {
	SenderID   string
	ReceiverID string
	ItemID     string
}

// FindOrCreateOutput represents output from opening a conversation
type FindOrCreateOutput struct {
	Conversation *entity.Conversation
	Messages     []entity.Message
	Created      bool
}

// FindOrCreate returns the pair's conversation, creating it when absent.
// An existing conversation about another item is repointed to the requested one.
func (s *Service) FindOrCreate(ctx context.Context, in FindOrCreateInput) (*FindOrCreateOutput, error) {
	if in.SenderID == in.ReceiverID {
		return nil, entity.ErrInvalidRecipient
	}

	conv, err := s.convs.FindByParticipants(ctx, in.SenderID, in.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("finding conversation: %w", err)
	}

	if conv == nil {
		now := s.now()
		conv = &entity.Conversation{
			Participants: []string{in.SenderID, in.ReceiverID},
			ItemID:       in.ItemID,
			LastUpdated:  now,
			CreatedAt:    now,
		}
		if err := s.convs.Create(ctx, conv); err != nil {
			return nil, fmt.Errorf("creating conversation: %w", err)
		}
		return &FindOrCreateOutput{Conversation: conv, Messages: []entity.Message{}, Created: true}, nil
	}

	if conv.ItemID != in.ItemID {
		if err := s.convs.SetItem(ctx, conv.ID, in.ItemID); err != nil {
			return nil, fmt.Errorf("updating conversation item: %w", err)
		}
		conv.ItemID = in.ItemID
	}

	msgs, err := s.Messages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	return &FindOrCreateOutput{Conversation: conv, Messages: msgs}, nil
}

// AppendMessageInput represents input for sending a message
type AppendMessageInput struct {
	ConversationID string
	SenderID       string
	Body           string
	Type           string
}

// AppendMessage stores a message and returns the conversation's full message list
func (s *Service) AppendMessage(ctx context.Context, in AppendMessageInput) ([]entity.Message, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, entity.ErrEmptyMessage
	}
	msgType, err := entity.ParseMessageType(in.Type)
	if err != nil {
		return nil, err
	}

	conv, err := s.convs.GetByID(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}
	if conv == nil || !conv.HasParticipant(in.SenderID) {
		return nil, entity.ErrConversationNotFound
	}

	now := s.now()
	if now.Before(conv.LastUpdated) {
		now = conv.LastUpdated
	}

	msg := &entity.Message{
		ConversationID: conv.ID,
		SenderID:       in.SenderID,
		Body:           in.Body,
		Type:           msgType,
		CreatedAt:      now,
	}
	if err := s.msgs.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	if err := s.convs.SetLastMessage(ctx, conv.ID, msg.ID, now); err != nil {
		return nil, fmt.Errorf("updating last message: %w", err)
	}

	return s.Messages(ctx, conv.ID)
}

// Get retrieves a conversation or ErrConversationNotFound
func (s *Service) Get(ctx context.Context, id string) (*entity.Conversation, error) {
	conv, err := s.convs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}
	if conv == nil {
		return nil, entity.ErrConversationNotFound
	}
	return conv, nil
}

// Messages retrieves a conversation's messages, oldest first
func (s *Service) Messages(ctx context.Context, conversationID string) ([]entity.Message, error) {
	msgs, err := s.msgs.GetByConversationID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("getting messages: %w", err)
	}
	if msgs == nil {
		return []entity.Message{}, nil
	}
	entity.SortMessages(msgs)
	return msgs, nil
}

// MessagesByIDs retrieves messages for a set of IDs
func (s *Service) MessagesByIDs(ctx context.Context, ids []string) ([]entity.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	msgs, err := s.msgs.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("getting messages: %w", err)
	}
	return msgs, nil
}

// ListForUser retrieves every conversation the user takes part in
func (s *Service) ListForUser(ctx context.Context, userID string) ([]entity.Conversation, error) {
	convs, err := s.convs.GetByParticipantID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return convs, nil
}

// DeleteForUser removes the messages a user sent and the conversations they take part in
func (s *Service) DeleteForUser(ctx context.Context, userID string) error {
	if _, err := s.msgs.DeleteBySenderID(ctx, userID); err != nil {
		return fmt.Errorf("deleting user messages: %w", err)
	}
	if _, err := s.convs.DeleteByParticipantID(ctx, userID); err != nil {
		return fmt.Errorf("deleting user conversations: %w", err)
	}
	return nil
}
