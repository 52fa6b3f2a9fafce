package policy

import (
	"context"
	"fmt"

	"github.com/vadim/campus-market/internal/domain/item/entity"
	"github.com/vadim/campus-market/internal/domain/item/service"
	userentity "github.com/vadim/campus-market/internal/domain/user/entity"
)

// ItemService defines the interface for the item service
type ItemService interface {
	Create(ctx context.Context, in service.CreateInput) (*entity.Item, error)
	List(ctx context.Context, f entity.Filter) ([]entity.Item, error)
	Update(ctx context.Context, id string, c entity.Changes) (*entity.Item, error)
	Archive(ctx context.Context, id string) (*entity.Item, error)
	ArchiveMany(ctx context.Context, ids []string) (int64, error)
	SetStatus(ctx context.Context, id string, archived bool) (*entity.Item, error)
}

// UserProvider resolves item owners
type UserProvider interface {
	GetByIDs(ctx context.Context, ids []string) ([]userentity.User, error)
}

// ItemView is a listing with its owner populated
type ItemView struct {
	entity.Item
	Owner *userentity.User `json:"owner"`
}

// Policy handles item operations that need user data
type Policy struct {
	svc   ItemService
	users UserProvider
}

// New creates a new item policy
func New(svc ItemService, users UserProvider) *Policy {
	return &Policy{svc: svc, users: users}
}

// List retrieves visible listings with owners populated
func (p *Policy) List(ctx context.Context, f entity.Filter) ([]ItemView, error) {
	items, err := p.svc.List(ctx, f)
	if err != nil {
		return nil, err
	}

	ownerIDs := make([]string, 0, len(items))
	for _, it := range items {
		ownerIDs = append(ownerIDs, it.OwnerID)
	}
	owners, err := p.users.GetByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("populating owners: %w", err)
	}
	byID := userentity.Index(owners)

	views := make([]ItemView, len(items))
	for i, it := range items {
		views[i] = ItemView{Item: it, Owner: byID[it.OwnerID]}
	}
	return views, nil
}

// Create posts a new listing
func (p *Policy) Create(ctx context.Context, in service.CreateInput) (*entity.Item, error) {
	return p.svc.Create(ctx, in)
}

// Update edits a listing
func (p *Policy) Update(ctx context.Context, id string, c entity.Changes) (*entity.Item, error) {
	return p.svc.Update(ctx, id, c)
}

// Archive hides a listing
func (p *Policy) Archive(ctx context.Context, id string) (*entity.Item, error) {
	return p.svc.Archive(ctx, id)
}

// ArchiveMany hides a set of listings
func (p *Policy) ArchiveMany(ctx context.Context, ids []string) error {
	_, err := p.svc.ArchiveMany(ctx, ids)
	return err
}

// SetStatusOutput represents output from an item status change
type SetStatusOutput struct {
	Message string       `json:"message"`
	Item    *entity.Item `json:"item"`
}

// SetStatus archives or recovers an item together with its owner's other items
func (p *Policy) SetStatus(ctx context.Context, id string, archived bool) (*SetStatusOutput, error) {
	item, err := p.svc.SetStatus(ctx, id, archived)
	if err != nil {
		return nil, err
	}
	return &SetStatusOutput{Message: entity.StatusMessage(archived), Item: item}, nil
}
