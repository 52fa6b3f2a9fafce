package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vadim/campus-market/internal/domain/order/entity"
)

// Repository defines the interface for order storage.
// Lookups and updates return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id string, status entity.Status, at time.Time) (*entity.Order, error)
	ListByBuyer(ctx context.Context, userID string) ([]entity.Order, error)
	ListBySeller(ctx context.Context, userID string) ([]entity.Order, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Service handles order business logic
type Service struct {
	orders             Repository
	enforceTransitions bool
	now                func() time.Time
}

// New creates a new order service. With enforceTransitions off any valid
// status may be applied to any order.
func New(orders Repository, enforceTransitions bool) *Service {
	return &Service{orders: orders, enforceTransitions: enforceTransitions, now: time.Now}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateInput represents input for placing an order
type CreateInput struct {
	ItemID   string
	ItemName string
	BuyerID  string
	SellerID string
	Status   string // optional, defaults to pending
}

// Create places an order
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	if in.ItemID == "" || in.ItemName == "" || in.BuyerID == "" || in.SellerID == "" {
		return nil, entity.ErrMissingReference
	}

	status := entity.StatusPending
	if in.Status != "" {
		st, err := entity.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}

	now := s.now()
	o := &entity.Order{
		ItemID:    in.ItemID,
		ItemName:  in.ItemName,
		BuyerID:   in.BuyerID,
		SellerID:  in.SellerID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}
	return o, nil
}

// Get retrieves an order or ErrOrderNotFound
func (s *Service) Get(ctx context.Context, id string) (*entity.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}
	if o == nil {
		return nil, entity.ErrOrderNotFound
	}
	return o, nil
}

// CheckTransition reports whether o may move to next
func (s *Service) CheckTransition(o *entity.Order, next entity.Status) error {
	if !s.enforceTransitions {
		return nil
	}
	if !o.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", entity.ErrInvalidTransition, o.Status, next)
	}
	return nil
}

// UpdateStatus applies a status to an order
func (s *Service) UpdateStatus(ctx context.Context, id string, status entity.Status) (*entity.Order, error) {
	o, err := s.orders.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		return nil, fmt.Errorf("updating order status: %w", err)
	}
	if o == nil {
		return nil, entity.ErrOrderNotFound
	}
	return o, nil
}

// ListByBuyer retrieves a buyer's orders
func (s *Service) ListByBuyer(ctx context.Context, userID string) ([]entity.Order, error) {
	orders, err := s.orders.ListByBuyer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing buyer orders: %w", err)
	}
	return nonNil(orders), nil
}

// ListBySeller retrieves a seller's orders
func (s *Service) ListBySeller(ctx context.Context, userID string) ([]entity.Order, error) {
	orders, err := s.orders.ListBySeller(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing seller orders: %w", err)
	}
	return nonNil(orders), nil
}

// DeleteByUser removes every order where the user is buyer or seller
func (s *Service) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.orders.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting user orders: %w", err)
	}
	return n, nil
}

func nonNil(orders []entity.Order) []entity.Order {
	if orders == nil {
		return []entity.Order{}
	}
	return orders
}
