package service

import (
	"context"
	"fmt"

	"github.com/vadim/campus-market/internal/domain/item/entity"
)

// Repository defines the interface for item storage.
// Lookups and single-item updates return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Item, error)
	List(ctx context.Context, f entity.Filter) ([]entity.Item, error)
	Update(ctx context.Context, id string, c entity.Changes) (*entity.Item, error)
	SetArchived(ctx context.Context, id string, archived bool) (*entity.Item, error)
	SetArchivedMany(ctx context.Context, ids []string, archived bool) (int64, error)
	SetArchivedByOwner(ctx context.Context, ownerID string, archived bool) (int64, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// DefaultMinTextLength is the minimum combined length of a listing's text fields
const DefaultMinTextLength = 20

// Service handles item business logic
type Service struct {
	items         Repository
	minTextLength int
}

// New creates a new item service
func New(items Repository, minTextLength int) *Service {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}
	return &Service{items: items, minTextLength: minTextLength}
}

// CreateInput represents input for posting a listing
type CreateInput struct {
	Image       []string
	Category    string
	Condition   string
	Name        string
	Description string
	Price       float64
	Location    string
	OwnerID     string
}

// Create validates and stores a new listing
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Item, error) {
	item := &entity.Item{
		Image:       in.Image,
		Category:    in.Category,
		Condition:   in.Condition,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		OwnerID:     in.OwnerID,
	}
	if err := item.Validate(s.minTextLength); err != nil {
		return nil, err
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}
	return item, nil
}

// Get retrieves an item or ErrItemNotFound
func (s *Service) Get(ctx context.Context, id string) (*entity.Item, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, entity.ErrItemNotFound
	}
	return item, nil
}

// GetByID retrieves an item, returning nil when absent
func (s *Service) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetByIDs retrieves items for a set of IDs
func (s *Service) GetByIDs(ctx context.Context, ids []string) ([]entity.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := s.items.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("getting items: %w", err)
	}
	return items, nil
}

// List retrieves visible listings matching the filter
func (s *Service) List(ctx context.Context, f entity.Filter) ([]entity.Item, error) {
	items, err := s.items.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	if items == nil {
		items = []entity.Item{}
	}
	return items, nil
}

// Update edits a listing
func (s *Service) Update(ctx context.Context, id string, c entity.Changes) (*entity.Item, error) {
	if c.Price != nil && *c.Price < 0 {
		return nil, entity.ErrNegativePrice
	}
	if c.Image != nil && len(c.Image) == 0 {
		return nil, entity.ErrNoImages
	}

	item, err := s.items.Update(ctx, id, c)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	if item == nil {
		return nil, entity.ErrItemNotFound
	}
	return item, nil
}

// SetArchived sets the archived flag on a single item
func (s *Service) SetArchived(ctx context.Context, id string, archived bool) (*entity.Item, error) {
	item, err := s.items.SetArchived(ctx, id, archived)
	if err != nil {
		return nil, fmt.Errorf("setting item archived: %w", err)
	}
	if item == nil {
		return nil, entity.ErrItemNotFound
	}
	return item, nil
}

// Archive hides a listing
func (s *Service) Archive(ctx context.Context, id string) (*entity.Item, error) {
	return s.SetArchived(ctx, id, true)
}

// ArchiveMany hides a set of listings
func (s *Service) ArchiveMany(ctx context.Context, ids []string) (int64, error) {
	n, err := s.items.SetArchivedMany(ctx, ids, true)
	if err != nil {
		return 0, fmt.Errorf("archiving items: %w", err)
	}
	return n, nil
}

// SetStatus sets the archived flag on an item and on every item of the same owner
func (s *Service) SetStatus(ctx context.Context, id string, archived bool) (*entity.Item, error) {
	item, err := s.SetArchived(ctx, id, archived)
	if err != nil {
		return nil, err
	}

	if _, err := s.items.SetArchivedByOwner(ctx, item.OwnerID, archived); err != nil {
		return nil, fmt.Errorf("setting owner items archived: %w", err)
	}
	return item, nil
}

// SetArchivedByOwner sets the archived flag on every item of an owner
func (s *Service) SetArchivedByOwner(ctx context.Context, ownerID string, archived bool) (int64, error) {
	n, err := s.items.SetArchivedByOwner(ctx, ownerID, archived)
	if err != nil {
		return 0, fmt.Errorf("setting owner items archived: %w", err)
	}
	return n, nil
}

// DeleteByOwner removes every item of an owner
func (s *Service) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.items.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("deleting owner items: %w", err)
	}
	return n, nil
}
