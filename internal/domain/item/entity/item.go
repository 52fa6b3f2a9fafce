package entity

import (
	"errors"
	"strings"
)

// Domain errors for items
var (
	ErrItemNotFound        = errors.New("item not found")
	ErrDescriptionTooShort = errors.New("a more detailed description is needed to post this item")
	ErrNoImages            = errors.New("at least one image is required")
	ErrNegativePrice       = errors.New("price cannot be negative")
	ErrEmptyOwner          = errors.New("owner is required")
)

// Item represents a marketplace listing
type Item struct {
	ID          string   `json:"id"`
	Image       []string `json:"image"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Location    string   `json:"location"`
	OwnerID     string   `json:"owner"`
	IsArchived  bool     `json:"isArchived"`
}

// TextLength is the combined length of the free-text fields
func (i *Item) TextLength() int {
	return len(i.Name) + len(i.Description) + len(i.Category) + len(i.Location)
}

// Validate checks a new listing
func (i *Item) Validate(minTextLength int) error {
	if i.OwnerID == "" {
		return ErrEmptyOwner
	}
	if len(i.Image) == 0 {
		return ErrNoImages
	}
	if i.Price < 0 {
		return ErrNegativePrice
	}
	if i.TextLength() < minTextLength {
		return ErrDescriptionTooShort
	}
	return nil
}

// Filter narrows item listings. Archived items are never listed.
type Filter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	OwnerID  string
}

// Matches reports whether the item satisfies f
func (f Filter) Matches(i *Item) bool {
	if i.IsArchived {
		return false
	}
	if f.Category != "" && i.Category != f.Category {
		return false
	}
	if f.OwnerID != "" && i.OwnerID != f.OwnerID {
		return false
	}
	if f.MinPrice != nil && i.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && i.Price > *f.MaxPrice {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		for _, field := range []string{i.Name, i.Description, i.Category, i.Location} {
			if strings.Contains(strings.ToLower(field), term) {
				return true
			}
		}
		return false
	}
	return true
}

// Changes holds editable listing fields; nil leaves a field untouched
type Changes struct {
	Image       []string
	Category    *string
	Condition   *string
	Name        *string
	Description *string
	Price       *float64
	Location    *string
}

// Apply copies the set fields onto i
func (c Changes) Apply(i *Item) {
	if c.Image != nil {
		i.Image = c.Image
	}
	if c.Category != nil {
		i.Category = *c.Category
	}
	if c.Condition != nil {
		i.Condition = *c.Condition
	}
	if c.Name != nil {
		i.Name = *c.Name
	}
	if c.Description != nil {
		i.Description = *c.Description
	}
	if c.Price != nil {
		i.Price = *c.Price
	}
	if c.Location != nil {
		i.Location = *c.Location
	}
}

// StatusMessage describes an archive flag change
func StatusMessage(archived bool) string {
	if archived {
		return "Item archived"
	}
	return "Item recovered"
}

// Index maps items by ID
func Index(items []Item) map[string]*Item {
	out := make(map[string]*Item, len(items))
	for i := range items {
		out[items[i].ID] = &items[i]
	}
	return out
}
