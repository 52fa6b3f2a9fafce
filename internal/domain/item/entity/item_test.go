package entity

import "testing"

func ptr[T any](v T) *T { return &v }

func TestItemValidate(t *testing.T) {
	base := Item{
		Image:       []string{"https://cdn.example.com/lamp.png"},
		Category:    "furniture",
		Condition:   "used",
		Name:        "Desk lamp",
		Description: "Warm light, works fine",
		Price:       12,
		Location:    "North dorm",
		OwnerID:     "owner-1",
	}

	tests := []struct {
		name   string
		mutate func(i *Item)
		want   error
	}{
		{name: "valid listing", mutate: func(i *Item) {}, want: nil},
		{name: "missing owner", mutate: func(i *Item) { i.OwnerID = "" }, want: ErrEmptyOwner},
		{name: "no images", mutate: func(i *Item) { i.Image = nil }, want: ErrNoImages},
		{name: "negative price", mutate: func(i *Item) { i.Price = -1 }, want: ErrNegativePrice},
		{name: "too little text", mutate: func(i *Item) {
			i.Name, i.Description, i.Category, i.Location = "Pen", "", "misc", "A"
		}, want: ErrDescriptionTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := base
			tt.mutate(&item)
			if got := item.Validate(20); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFilterMatches(t *testing.T) {
	item := Item{Name: "Calculus Textbook", Description: "8th edition", Category: "books", Location: "Library", Price: 40, OwnerID: "u1"}

	tests := []struct {
		name   string
		filter Filter
		item   Item
		want   bool
	}{
		{name: "empty filter", filter: Filter{}, item: item, want: true},
		{name: "search is case-insensitive", filter: Filter{Search: "calculus"}, item: item, want: true},
		{name: "search matches location", filter: Filter{Search: "libr"}, item: item, want: true},
		{name: "search treats regex characters literally", filter: Filter{Search: "c.lculus"}, item: item, want: false},
		{name: "category mismatch", filter: Filter{Category: "furniture"}, item: item, want: false},
		{name: "price range inclusive", filter: Filter{MinPrice: ptr(40.0), MaxPrice: ptr(40.0)}, item: item, want: true},
		{name: "below min price", filter: Filter{MinPrice: ptr(41.0)}, item: item, want: false},
		{name: "above max price", filter: Filter{MaxPrice: ptr(39.0)}, item: item, want: false},
		{name: "owner mismatch", filter: Filter{OwnerID: "u2"}, item: item, want: false},
		{name: "archived never matches", filter: Filter{}, item: func() Item { i := item; i.IsArchived = true; return i }(), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(&tt.item); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestChangesApply(t *testing.T) {
	item := Item{Name: "Chair", Price: 10, Location: "Dorm A"}
	Changes{Name: ptr("Office chair"), Price: ptr(15.5)}.Apply(&item)

	if item.Name != "Office chair" {
		t.Errorf("Expected name 'Office chair', got '%s'", item.Name)
	}
	if item.Price != 15.5 {
		t.Errorf("Expected price 15.5, got %v", item.Price)
	}
	if item.Location != "Dorm A" {
		t.Errorf("Expected location untouched, got '%s'", item.Location)
	}
}
