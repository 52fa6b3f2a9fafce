package policy

import (
	"context"
	"fmt"

	"github.com/vadim/campus-market/internal/domain/user/entity"
	"github.com/vadim/campus-market/internal/domain/user/service"
)

// UserService defines the interface for the user service
type UserService interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context, includeArchived bool) ([]entity.User, error)
	UpdateProfile(ctx context.Context, in service.UpdateProfileInput) (*entity.User, error)
	SetArchived(ctx context.Context, id string, archived bool) (*entity.User, error)
	Delete(ctx context.Context, id string) error
}

// ItemCleaner removes the listings of a user
type ItemCleaner interface {
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// ConversationCleaner removes a user's messages and conversations
type ConversationCleaner interface {
	DeleteForUser(ctx context.Context, userID string) error
}

// OrderCleaner removes the orders a user took part in
type OrderCleaner interface {
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Policy handles account administration across domains
type Policy struct {
	svc    UserService
	items  ItemCleaner
	convs  ConversationCleaner
	orders OrderCleaner
}

// New creates a new user policy
func New(svc UserService, items ItemCleaner, convs ConversationCleaner, orders OrderCleaner) *Policy {
	return &Policy{svc: svc, items: items, convs: convs, orders: orders}
}

// List retrieves users; archived accounts only when includeArchived is set
func (p *Policy) List(ctx context.Context, includeArchived bool) ([]entity.User, error) {
	return p.svc.List(ctx, includeArchived)
}

// Update edits an account profile
func (p *Policy) Update(ctx context.Context, in service.UpdateProfileInput) (*entity.User, error) {
	return p.svc.UpdateProfile(ctx, in)
}

// SetStatus archives or recovers an account and returns the confirmation message
func (p *Policy) SetStatus(ctx context.Context, id string, archived bool) (string, error) {
	if _, err := p.svc.SetArchived(ctx, id, archived); err != nil {
		return "", err
	}
	return entity.StatusMessage(archived), nil
}

// Delete removes an account together with its items, messages, conversations and orders
func (p *Policy) Delete(ctx context.Context, id string) error {
	u, err := p.svc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return entity.ErrUserNotFound
	}

	if _, err := p.items.DeleteByOwner(ctx, id); err != nil {
		return fmt.Errorf("deleting user items: %w", err)
	}
	if err := p.convs.DeleteForUser(ctx, id); err != nil {
		return fmt.Errorf("deleting user conversations: %w", err)
	}
	if _, err := p.orders.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("deleting user orders: %w", err)
	}

	return p.svc.Delete(ctx, id)
}
