package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vadim/campus-market/internal/domain/item/entity"
	"github.com/vadim/campus-market/internal/domain/item/service"
	"github.com/vadim/campus-market/internal/testutil/memstore"
)

func validInput(owner string) service.CreateInput {
	return service.CreateInput{
		Image:       []string{"https://cdn.example.com/chair.png"},
		Category:    "furniture",
		Condition:   "good",
		Name:        "Office chair",
		Description: "Adjustable height",
		Price:       25,
		Location:    "West campus",
		OwnerID:     owner,
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a valid listing", func(t *testing.T) {
		store := memstore.New()
		svc := service.New(store.Items(), 20)

		item, err := svc.Create(ctx, validInput("owner-1"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if item.ID == "" {
			t.Error("Expected an assigned ID")
		}
		if _, ok := store.Item(item.ID); !ok {
			t.Error("Expected the item to be stored")
		}
	})

	t.Run("rejects short text", func(t *testing.T) {
		store := memstore.New()
		svc := service.New(store.Items(), 200)

		_, err := svc.Create(ctx, validInput("owner-1"))
		if !errors.Is(err, entity.ErrDescriptionTooShort) {
			t.Errorf("Expected ErrDescriptionTooShort, got %v", err)
		}
		if n := store.Count().Items; n != 0 {
			t.Errorf("Expected nothing stored, got %d items", n)
		}
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := service.New(store.Items(), 0)
	item := store.AddItem(entity.Item{Name: "Chair", Price: 10, OwnerID: "o1"})

	price := 12.5
	updated, err := svc.Update(ctx, item.ID, entity.Changes{Price: &price})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if updated.Price != 12.5 || updated.Name != "Chair" {
		t.Errorf("Expected price 12.5 and name kept, got %+v", updated)
	}

	if _, err := svc.Update(ctx, "missing", entity.Changes{Price: &price}); !errors.Is(err, entity.ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}

	negative := -1.0
	if _, err := svc.Update(ctx, item.ID, entity.Changes{Price: &negative}); !errors.Is(err, entity.ErrNegativePrice) {
		t.Errorf("Expected ErrNegativePrice, got %v", err)
	}
}

func TestListHidesArchived(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := service.New(store.Items(), 0)
	store.AddItem(entity.Item{Name: "Visible lamp", OwnerID: "o1"})
	store.AddItem(entity.Item{Name: "Hidden lamp", OwnerID: "o1", IsArchived: true})

	items, err := svc.List(ctx, entity.Filter{Search: "LAMP"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Visible lamp" {
		t.Errorf("Expected only the visible lamp, got %+v", items)
	}

	empty, err := svc.List(ctx, entity.Filter{Search: "sofa"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if empty == nil {
		t.Error("Expected a non-nil empty list")
	}
}

func TestArchiving(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := service.New(store.Items(), 0)

	a := store.AddItem(entity.Item{Name: "A", OwnerID: "o1"})
	b := store.AddItem(entity.Item{Name: "B", OwnerID: "o1"})
	c := store.AddItem(entity.Item{Name: "C", OwnerID: "o2"})

	t.Run("archive one", func(t *testing.T) {
		item, err := svc.Archive(ctx, c.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !item.IsArchived {
			t.Error("Expected item archived")
		}
		if _, err := svc.Archive(ctx, "missing"); !errors.Is(err, entity.ErrItemNotFound) {
			t.Errorf("Expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("status propagates to the owner's items", func(t *testing.T) {
		if _, err := svc.SetStatus(ctx, a.ID, true); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		for _, id := range []string{a.ID, b.ID} {
			if it, _ := store.Item(id); !it.IsArchived {
				t.Errorf("Expected item %s archived", it.Name)
			}
		}

		if _, err := svc.SetStatus(ctx, b.ID, false); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		for _, id := range []string{a.ID, b.ID} {
			if it, _ := store.Item(id); it.IsArchived {
				t.Errorf("Expected item %s recovered", it.Name)
			}
		}
		if it, _ := store.Item(c.ID); !it.IsArchived {
			t.Error("Expected another owner's item untouched")
		}
	})

	t.Run("archive many", func(t *testing.T) {
		n, err := svc.ArchiveMany(ctx, []string{a.ID, b.ID, "missing"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if n != 2 {
			t.Errorf("Expected 2 archived, got %d", n)
		}
	})
}
