package policy_test

import (
	"context"
	"errors"
	"testing"

	convservice "github.com/vadim/campus-market/internal/domain/conversation/service"
	itementity "github.com/vadim/campus-market/internal/domain/item/entity"
	itemservice "github.com/vadim/campus-market/internal/domain/item/service"
	orderservice "github.com/vadim/campus-market/internal/domain/order/service"
	"github.com/vadim/campus-market/internal/domain/user/entity"
	"github.com/vadim/campus-market/internal/domain/user/policy"
	"github.com/vadim/campus-market/internal/domain/user/service"
	"github.com/vadim/campus-market/internal/testutil/memstore"
)

func newPolicy(store *memstore.Store) (*policy.Policy, *convservice.Service, *orderservice.Service) {
	convs := convservice.New(store.Conversations(), store.Messages())
	orders := orderservice.New(store.Orders(), true)
	p := policy.New(
		service.New(store.Users()),
		itemservice.New(store.Items(), 0),
		convs,
		orders,
	)
	return p, convs, orders
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	p, convs, orders := newPolicy(store)

	alice := store.AddUser(entity.User{Name: "Alice"})
	bob := store.AddUser(entity.User{Name: "Bob"})
	carol := store.AddUser(entity.User{Name: "Carol"})

	lamp := store.AddItem(itementity.Item{Name: "Lamp", OwnerID: alice.ID})
	desk := store.AddItem(itementity.Item{Name: "Desk", OwnerID: bob.ID})

	withAlice, err := convs.FindOrCreate(ctx, convservice.FindOrCreateInput{SenderID: bob.ID, ReceiverID: alice.ID, ItemID: lamp.ID})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, _ = convs.AppendMessage(ctx, convservice.AppendMessageInput{ConversationID: withAlice.Conversation.ID, SenderID: alice.ID, Body: "hi"})
	_, _ = convs.AppendMessage(ctx, convservice.AppendMessageInput{ConversationID: withAlice.Conversation.ID, SenderID: bob.ID, Body: "hello"})

	withCarol, _ := convs.FindOrCreate(ctx, convservice.FindOrCreateInput{SenderID: bob.ID, ReceiverID: carol.ID, ItemID: desk.ID})
	_, _ = convs.AppendMessage(ctx, convservice.AppendMessageInput{ConversationID: withCarol.Conversation.ID, SenderID: carol.ID, Body: "price?"})

	for _, in := range []orderservice.CreateInput{
		{ItemID: lamp.ID, ItemName: "Lamp", BuyerID: bob.ID, SellerID: alice.ID},
		{ItemID: desk.ID, ItemName: "Desk", BuyerID: alice.ID, SellerID: bob.ID},
		{ItemID: desk.ID, ItemName: "Desk", BuyerID: carol.ID, SellerID: bob.ID},
	} {
		if _, err := orders.Create(ctx, in); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if err := p.Delete(ctx, alice.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, ok := store.User(alice.ID); ok {
		t.Error("Expected user removed")
	}
	if _, ok := store.Item(lamp.ID); ok {
		t.Error("Expected the user's item removed")
	}
	if _, ok := store.Item(desk.ID); !ok {
		t.Error("Expected other items kept")
	}
	if _, ok := store.Conversation(withAlice.Conversation.ID); ok {
		t.Error("Expected the user's conversation removed")
	}
	if _, ok := store.Conversation(withCarol.Conversation.ID); !ok {
		t.Error("Expected other conversations kept")
	}

	counts := store.Count()
	// bob's "hello" survives as an orphan; alice's "hi" is gone
	if counts.Messages != 2 {
		t.Errorf("Expected 2 messages left, got %d", counts.Messages)
	}
	if counts.Orders != 1 {
		t.Errorf("Expected 1 order left, got %d", counts.Orders)
	}
}

func TestDeleteUnknownUser(t *testing.T) {
	store := memstore.New()
	p, _, _ := newPolicy(store)
	store.AddItem(itementity.Item{Name: "Lamp", OwnerID: "ghost"})

	if err := p.Delete(context.Background(), "ghost"); !errors.Is(err, entity.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
	if n := store.Count().Items; n != 1 {
		t.Errorf("Expected nothing removed, got %d items", n)
	}
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	p, _, _ := newPolicy(store)
	u := store.AddUser(entity.User{Name: "Dan"})

	tests := []struct {
		archived bool
		want     string
	}{
		{archived: true, want: "User archived successfully"},
		{archived: false, want: "User recovered successfully"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			msg, err := p.SetStatus(ctx, u.ID, tt.archived)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if msg != tt.want {
				t.Errorf("Expected '%s', got '%s'", tt.want, msg)
			}
			if stored, _ := store.User(u.ID); stored.IsArchived != tt.archived {
				t.Errorf("Expected archived=%v, got %v", tt.archived, stored.IsArchived)
			}
		})
	}

	if _, err := p.SetStatus(ctx, "missing", true); !errors.Is(err, entity.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
