package policy

import (
	"context"
	"fmt"

	itementity "github.com/vadim/campus-market/internal/domain/item/entity"
	"github.com/vadim/campus-market/internal/domain/order/entity"
	"github.com/vadim/campus-market/internal/domain/order/service"
	userentity "github.com/vadim/campus-market/internal/domain/user/entity"
)

// OrderService defines the interface for the order service
type OrderService interface {
	Create(ctx context.Context, in service.CreateInput) (*entity.Order, error)
	Get(ctx context.Context, id string) (*entity.Order, error)
	CheckTransition(o *entity.Order, next entity.Status) error
	UpdateStatus(ctx context.Context, id string, status entity.Status) (*entity.Order, error)
	ListByBuyer(ctx context.Context, userID string) ([]entity.Order, error)
	ListBySeller(ctx context.Context, userID string) ([]entity.Order, error)
}

// ItemProvider reads and updates the items orders refer to
type ItemProvider interface {
	GetByID(ctx context.Context, id string) (*itementity.Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]itementity.Item, error)
	SetArchived(ctx context.Context, id string, archived bool) (*itementity.Item, error)
}

// UserProvider resolves buyers and sellers
type UserProvider interface {
	GetByID(ctx context.Context, id string) (*userentity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]userentity.User, error)
}

// OrderView is an order with item, buyer and seller populated
type OrderView struct {
	entity.Order
	Item   *itementity.Item `json:"item"`
	Buyer  *userentity.User `json:"buyer"`
	Seller *userentity.User `json:"seller"`
}

// Policy handles order operations that touch items and users
type Policy struct {
	svc   OrderService
	items ItemProvider
	users UserProvider
}

// New creates a new order policy
func New(svc OrderService, items ItemProvider, users UserProvider) *Policy {
	return &Policy{svc: svc, items: items, users: users}
}

// Create places an order
func (p *Policy) Create(ctx context.Context, in service.CreateInput) (*entity.Order, error) {
	return p.svc.Create(ctx, in)
}

// Transition moves an order to a new status and re-derives the item's visibility:
// a completed sale archives the item, any other status mirrors the seller's archived flag.
// Nothing is written unless the order, its item and its seller all exist.
func (p *Policy) Transition(ctx context.Context, orderID, status string) (*entity.Order, error) {
	next, err := entity.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	o, err := p.svc.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := p.svc.CheckTransition(o, next); err != nil {
		return nil, err
	}

	item, err := p.items.GetByID(ctx, o.ItemID)
	if err != nil {
		return nil, fmt.Errorf("getting order item: %w", err)
	}
	seller, err := p.users.GetByID(ctx, o.SellerID)
	if err != nil {
		return nil, fmt.Errorf("getting order seller: %w", err)
	}
	if item == nil || seller == nil {
		return nil, entity.ErrItemOrSellerNotFound
	}

	updated, err := p.svc.UpdateStatus(ctx, o.ID, next)
	if err != nil {
		return nil, err
	}

	archived := next == entity.StatusCompleted || seller.IsArchived
	if _, err := p.items.SetArchived(ctx, item.ID, archived); err != nil {
		return nil, fmt.Errorf("updating item visibility: %w", err)
	}

	return updated, nil
}

// ListByBuyer retrieves a buyer's orders with references populated
func (p *Policy) ListByBuyer(ctx context.Context, userID string) ([]OrderView, error) {
	orders, err := p.svc.ListByBuyer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.populate(ctx, orders)
}

// ListBySeller retrieves a seller's orders with references populated
func (p *Policy) ListBySeller(ctx context.Context, userID string) ([]OrderView, error) {
	orders, err := p.svc.ListBySeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.populate(ctx, orders)
}

func (p *Policy) populate(ctx context.Context, orders []entity.Order) ([]OrderView, error) {
	views := make([]OrderView, len(orders))
	if len(orders) == 0 {
		return views, nil
	}

	itemIDs := make([]string, 0, len(orders))
	userIDs := make([]string, 0, 2*len(orders))
	for _, o := range orders {
		itemIDs = append(itemIDs, o.ItemID)
		userIDs = append(userIDs, o.BuyerID, o.SellerID)
	}

	items, err := p.items.GetByIDs(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("populating items: %w", err)
	}
	users, err := p.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("populating users: %w", err)
	}

	itemsByID := itementity.Index(items)
	usersByID := userentity.Index(users)
	for i, o := range orders {
		views[i] = OrderView{
			Order:  o,
			Item:   itemsByID[o.ItemID],
			Buyer:  usersByID[o.BuyerID],
			Seller: usersByID[o.SellerID],
		}
	}
	return views, nil
}
