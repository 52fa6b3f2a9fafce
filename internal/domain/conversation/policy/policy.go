package policy

import (
	"context"
	"fmt"

	"github.com/vadim/campus-market/internal/domain/conversation/entity"
	"github.com/vadim/campus-market/internal/domain/conversation/service"
	itementity "github.com/vadim/campus-market/internal/domain/item/entity"
	userentity "github.com/vadim/campus-market/internal/domain/user/entity"
)

// ConversationService defines the interface for the conversation service
type ConversationService interface {
	FindOrCreate(ctx context.Context, in service.FindOrCreateInput) (*service.FindOrCreateOutput, error)
	AppendMessage(ctx context.Context, in service.AppendMessageInput) ([]entity.Message, error)
	Get(ctx context.Context, id string) (*entity.Conversation, error)
	Messages(ctx context.Context, conversationID string) ([]entity.Message, error)
	MessagesByIDs(ctx context.Context, ids []string) ([]entity.Message, error)
	ListForUser(ctx context.Context, userID string) ([]entity.Conversation, error)
}

// UserProvider resolves participants and senders
type UserProvider interface {
	GetByID(ctx context.Context, id string) (*userentity.User, error)
	GetByName(ctx context.Context, name string) (*userentity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]userentity.User, error)
}

// ItemProvider resolves the items conversations are about
type ItemProvider interface {
	GetByIDs(ctx context.Context, ids []string) ([]itementity.Item, error)
}

// Policy handles conversation operations that need user and item data
type Policy struct {
	svc   ConversationService
	users UserProvider
	items ItemProvider
}

// New creates a new conversation policy
func New(svc ConversationService, users UserProvider, items ItemProvider) *Policy {
	return &Policy{svc: svc, users: users, items: items}
}

// StartInput represents input for opening a conversation
type StartInput struct {
	SenderID     string
	ReceiverName string
	ItemID       string
}

// StartOutput represents output from opening a conversation
type StartOutput struct {
	Messages     []entity.MessageView    `json:"messages"`
	Conversation entity.ConversationView `json:"conversation"`
	New          bool                    `json:"new"`
}

// Start finds or creates the conversation between the sender and the named receiver
func (p *Policy) Start(ctx context.Context, in StartInput) (*StartOutput, error) {
	sender, err := p.users.GetByID(ctx, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("getting sender: %w", err)
	}
	if sender == nil {
		return nil, userentity.ErrUserNotFound
	}

	receiver, err := p.users.GetByName(ctx, in.ReceiverName)
	if err != nil {
		return nil, fmt.Errorf("getting receiver: %w", err)
	}
	if receiver == nil {
		return nil, userentity.ErrUserNotFound
	}

	out, err := p.svc.FindOrCreate(ctx, service.FindOrCreateInput{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		ItemID:     in.ItemID,
	})
	if err != nil {
		return nil, err
	}

	convs := []entity.Conversation{*out.Conversation}
	r, err := p.loadRefs(ctx, convs, nil)
	if err != nil {
		return nil, err
	}
	msgs, err := p.messageViews(ctx, out.Messages)
	if err != nil {
		return nil, err
	}

	return &StartOutput{
		Messages:     msgs,
		Conversation: r.view(&convs[0], sender.ID),
		New:          out.Created,
	}, nil
}

// SendInput represents input for sending a message
type SendInput struct {
	ConversationID string
	SenderID       string
	Body           string
	Type           string
}

// Send appends a message and returns the conversation's full message list
func (p *Policy) Send(ctx context.Context, in SendInput) ([]entity.MessageView, error) {
	msgs, err := p.svc.AppendMessage(ctx, service.AppendMessageInput{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Body:           in.Body,
		Type:           in.Type,
	})
	if err != nil {
		return nil, err
	}
	return p.messageViews(ctx, msgs)
}

// List retrieves a user's conversations, leaving out those about archived items
func (p *Policy) List(ctx context.Context, userID string) ([]entity.ConversationView, error) {
	convs, err := p.svc.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := p.itemsFor(ctx, convs)
	if err != nil {
		return nil, err
	}

	visible := make([]entity.Conversation, 0, len(convs))
	for _, c := range convs {
		if it, ok := items[c.ItemID]; ok && it.IsArchived {
			continue
		}
		visible = append(visible, c)
	}

	r, err := p.loadRefs(ctx, visible, items)
	if err != nil {
		return nil, err
	}

	views := make([]entity.ConversationView, len(visible))
	for i := range visible {
		views[i] = r.view(&visible[i], userID)
	}
	return views, nil
}

// GetOutput represents a conversation with its messages
type GetOutput struct {
	Messages     []entity.MessageView    `json:"messages"`
	Conversation entity.ConversationView `json:"conversation"`
}

// Get retrieves a conversation and its messages.
// Conversations about an archived item cannot be viewed.
func (p *Policy) Get(ctx context.Context, conversationID string) (*GetOutput, error) {
	conv, err := p.svc.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	convs := []entity.Conversation{*conv}
	items, err := p.itemsFor(ctx, convs)
	if err != nil {
		return nil, err
	}
	if it, ok := items[conv.ItemID]; ok && it.IsArchived {
		return nil, entity.ErrItemArchived
	}

	msgs, err := p.svc.Messages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	r, err := p.loadRefs(ctx, convs, items)
	if err != nil {
		return nil, err
	}
	views, err := p.messageViews(ctx, msgs)
	if err != nil {
		return nil, err
	}

	return &GetOutput{Messages: views, Conversation: r.view(conv, "")}, nil
}

func (p *Policy) itemsFor(ctx context.Context, convs []entity.Conversation) (map[string]*itementity.Item, error) {
	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		if c.ItemID != "" {
			ids = append(ids, c.ItemID)
		}
	}
	if len(ids) == 0 {
		return map[string]*itementity.Item{}, nil
	}

	items, err := p.items.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("populating items: %w", err)
	}
	return itementity.Index(items), nil
}

// refs holds the documents a set of conversations points at
type refs struct {
	users    map[string]*userentity.User
	items    map[string]*itementity.Item
	messages map[string]*entity.Message
}

func (p *Policy) loadRefs(ctx context.Context, convs []entity.Conversation, items map[string]*itementity.Item) (*refs, error) {
	var userIDs, msgIDs []string
	for _, c := range convs {
		userIDs = append(userIDs, c.Participants...)
		if c.LastMessageID != "" {
			msgIDs = append(msgIDs, c.LastMessageID)
		}
	}

	users, err := p.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("populating participants: %w", err)
	}

	if items == nil {
		if items, err = p.itemsFor(ctx, convs); err != nil {
			return nil, err
		}
	}

	msgs, err := p.svc.MessagesByIDs(ctx, msgIDs)
	if err != nil {
		return nil, fmt.Errorf("populating last messages: %w", err)
	}
	byID := make(map[string]*entity.Message, len(msgs))
	for i := range msgs {
		byID[msgs[i].ID] = &msgs[i]
	}

	return &refs{users: userentity.Index(users), items: items, messages: byID}, nil
}

// view populates c, leaving exclude out of the participants
func (r *refs) view(c *entity.Conversation, exclude string) entity.ConversationView {
	v := entity.ConversationView{
		ID:           c.ID,
		Participants: []entity.UserRef{},
		LastUpdated:  c.LastUpdated,
		CreatedAt:    c.CreatedAt,
		IsArchived:   c.IsArchived,
	}

	for _, id := range c.Participants {
		if id == exclude {
			continue
		}
		if u, ok := r.users[id]; ok {
			v.Participants = append(v.Participants, entity.UserRef{ID: u.ID, Name: u.Name, IsArchived: u.IsArchived})
		}
	}
	if it, ok := r.items[c.ItemID]; ok {
		v.Item = &entity.ItemRef{ID: it.ID, Name: it.Name, Image: it.Image, Price: it.Price}
	}
	if m, ok := r.messages[c.LastMessageID]; ok {
		v.LastMessage = &entity.MessageRef{ID: m.ID, Body: m.Body}
	}
	return v
}

func (p *Policy) messageViews(ctx context.Context, msgs []entity.Message) ([]entity.MessageView, error) {
	senderIDs := make([]string, 0, len(msgs))
	for _, m := range msgs {
		senderIDs = append(senderIDs, m.SenderID)
	}

	var senders map[string]*userentity.User
	if len(senderIDs) > 0 {
		users, err := p.users.GetByIDs(ctx, senderIDs)
		if err != nil {
			return nil, fmt.Errorf("populating senders: %w", err)
		}
		senders = userentity.Index(users)
	}

	views := make([]entity.MessageView, len(msgs))
	for i, m := range msgs {
		sender := entity.SenderRef{ID: m.SenderID}
		if u, ok := senders[m.SenderID]; ok {
			sender.Name = u.Name
		}
		views[i] = entity.MessageView{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			Sender:         sender,
			Body:           m.Body,
			Type:           m.Type,
			CreatedAt:      m.CreatedAt,
		}
	}
	return views, nil
}
