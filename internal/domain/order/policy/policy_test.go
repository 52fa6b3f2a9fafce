package policy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	itementity "github.com/vadim/campus-market/internal/domain/item/entity"
	itemservice "github.com/vadim/campus-market/internal/domain/item/service"
	"github.com/vadim/campus-market/internal/domain/order/entity"
	"github.com/vadim/campus-market/internal/domain/order/policy"
	"github.com/vadim/campus-market/internal/domain/order/service"
	userentity "github.com/vadim/campus-market/internal/domain/user/entity"
	userservice "github.com/vadim/campus-market/internal/domain/user/service"
	"github.com/vadim/campus-market/internal/testutil/memstore"
)

type fixture struct {
	store  *memstore.Store
	policy *policy.Policy
	buyer  userentity.User
	seller userentity.User
	item   itementity.Item
}

func newFixture(t *testing.T, enforce, sellerArchived, itemArchived bool) *fixture {
	t.Helper()
	store := memstore.New()

	buyer := store.AddUser(userentity.User{Name: "Buyer"})
	seller := store.AddUser(userentity.User{Name: "Seller", IsArchived: sellerArchived})
	item := store.AddItem(itementity.Item{Name: "Bike", OwnerID: seller.ID, Price: 80, IsArchived: itemArchived})

	t0 := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	orders := service.New(store.Orders(), enforce).WithClock(func() time.Time { return t0 })
	items := itemservice.New(store.Items(), 0)
	users := userservice.New(store.Users())

	return &fixture{
		store:  store,
		policy: policy.New(orders, items, users),
		buyer:  buyer,
		seller: seller,
		item:   item,
	}
}

func (f *fixture) placeOrder(t *testing.T, status string) *entity.Order {
	t.Helper()
	o, err := f.policy.Create(context.Background(), service.CreateInput{
		ItemID:   f.item.ID,
		ItemName: f.item.Name,
		BuyerID:  f.buyer.ID,
		SellerID: f.seller.ID,
		Status:   status,
	})
	if err != nil {
		t.Fatalf("Unexpected error creating order: %v", err)
	}
	return o
}

func TestCreateDefaultsToPending(t *testing.T) {
	f := newFixture(t, true, false, false)
	o := f.placeOrder(t, "")
	if o.Status != entity.StatusPending {
		t.Errorf("Expected status pending, got '%s'", o.Status)
	}
	if o.ID == "" {
		t.Error("Expected an order ID")
	}
}

func TestTransitionItemVisibility(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		enforce        bool
		sellerArchived bool
		itemArchived   bool
		from           string
		to             string
		wantArchived   bool
	}{
		{name: "completed archives a visible item", enforce: true, from: "in delivery", to: "completed", wantArchived: true},
		{name: "completed keeps an archived item archived", enforce: true, itemArchived: true, from: "in delivery", to: "completed", wantArchived: true},
		{name: "in delivery mirrors active seller", enforce: true, itemArchived: true, from: "pending", to: "in delivery", wantArchived: false},
		{name: "in delivery mirrors archived seller", enforce: true, sellerArchived: true, from: "pending", to: "in delivery", wantArchived: true},
		{name: "cancelled mirrors active seller", enforce: true, itemArchived: true, from: "pending", to: "cancelled", wantArchived: false},
		{name: "cancelled mirrors archived seller", enforce: true, sellerArchived: true, from: "in delivery", to: "cancelled", wantArchived: true},
		{name: "unchecked completed straight from pending", enforce: false, from: "pending", to: "completed", wantArchived: true},
		{name: "unchecked back to pending", enforce: false, itemArchived: true, from: "completed", to: "pending", wantArchived: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.enforce, tt.sellerArchived, tt.itemArchived)
			o := f.placeOrder(t, tt.from)

			updated, err := f.policy.Transition(ctx, o.ID, tt.to)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if string(updated.Status) != tt.to {
				t.Errorf("Expected status '%s', got '%s'", tt.to, updated.Status)
			}

			item, _ := f.store.Item(f.item.ID)
			if item.IsArchived != tt.wantArchived {
				t.Errorf("Expected item archived=%v, got %v", tt.wantArchived, item.IsArchived)
			}
		})
	}
}

func TestTransitionFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t, true, false, false)
		if _, err := f.policy.Transition(ctx, "missing", "completed"); !errors.Is(err, entity.ErrOrderNotFound) {
			t.Errorf("Expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t, false, false, false)
		o := f.placeOrder(t, "")
		if _, err := f.policy.Transition(ctx, o.ID, "shipped"); !errors.Is(err, entity.ErrInvalidStatus) {
			t.Errorf("Expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("guard rejects and leaves order and item untouched", func(t *testing.T) {
		f := newFixture(t, true, false, false)
		o := f.placeOrder(t, "")

		_, err := f.policy.Transition(ctx, o.ID, "completed")
		if !errors.Is(err, entity.ErrInvalidTransition) {
			t.Fatalf("Expected ErrInvalidTransition, got %v", err)
		}

		stored, _ := f.store.Order(o.ID)
		if stored.Status != entity.StatusPending {
			t.Errorf("Expected order to stay pending, got '%s'", stored.Status)
		}
		item, _ := f.store.Item(f.item.ID)
		if item.IsArchived {
			t.Error("Expected item to stay visible")
		}
	})

	t.Run("guard rejects leaving a terminal state", func(t *testing.T) {
		f := newFixture(t, true, false, false)
		o := f.placeOrder(t, "cancelled")
		if _, err := f.policy.Transition(ctx, o.ID, "pending"); !errors.Is(err, entity.ErrInvalidTransition) {
			t.Errorf("Expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("missing seller leaves order untouched", func(t *testing.T) {
		f := newFixture(t, true, false, false)
		o := f.placeOrder(t, "")
		if _, err := f.store.Users().Delete(ctx, f.seller.ID); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		_, err := f.policy.Transition(ctx, o.ID, "in delivery")
		if !errors.Is(err, entity.ErrItemOrSellerNotFound) {
			t.Fatalf("Expected ErrItemOrSellerNotFound, got %v", err)
		}
		stored, _ := f.store.Order(o.ID)
		if stored.Status != entity.StatusPending {
			t.Errorf("Expected order to stay pending, got '%s'", stored.Status)
		}
	})

	t.Run("missing item", func(t *testing.T) {
		f := newFixture(t, true, false, false)
		o := f.placeOrder(t, "")
		if _, err := f.store.Items().DeleteByOwner(ctx, f.seller.ID); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, err := f.policy.Transition(ctx, o.ID, "in delivery"); !errors.Is(err, entity.ErrItemOrSellerNotFound) {
			t.Errorf("Expected ErrItemOrSellerNotFound, got %v", err)
		}
	})
}

func TestListPopulates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, false, false)
	f.placeOrder(t, "")
	f.placeOrder(t, "in delivery")

	bought, err := f.policy.ListByBuyer(ctx, f.buyer.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(bought) != 2 {
		t.Fatalf("Expected 2 orders, got %d", len(bought))
	}
	for _, v := range bought {
		if v.Item == nil || v.Item.Name != "Bike" {
			t.Errorf("Expected populated item, got %+v", v.Item)
		}
		if v.Buyer == nil || v.Buyer.Name != "Buyer" || v.Seller == nil || v.Seller.Name != "Seller" {
			t.Errorf("Expected populated buyer and seller, got %+v / %+v", v.Buyer, v.Seller)
		}
	}

	sold, err := f.policy.ListBySeller(ctx, f.seller.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sold) != 2 {
		t.Errorf("Expected 2 orders, got %d", len(sold))
	}

	none, err := f.policy.ListBySeller(ctx, f.buyer.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("Expected an empty non-nil list, got %v", none)
	}
}
