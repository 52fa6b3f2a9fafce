package policy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vadim/campus-market/internal/domain/conversation/entity"
	"github.com/vadim/campus-market/internal/domain/conversation/policy"
	"github.com/vadim/campus-market/internal/domain/conversation/service"
	itementity "github.com/vadim/campus-market/internal/domain/item/entity"
	itemservice "github.com/vadim/campus-market/internal/domain/item/service"
	userentity "github.com/vadim/campus-market/internal/domain/user/entity"
	userservice "github.com/vadim/campus-market/internal/domain/user/service"
	"github.com/vadim/campus-market/internal/testutil/memstore"
)

type fixture struct {
	store  *memstore.Store
	policy *policy.Policy
	alice  userentity.User
	bob    userentity.User
	lamp   itementity.Item
	desk   itementity.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()

	alice := store.AddUser(userentity.User{Name: "Alice"})
	bob := store.AddUser(userentity.User{Name: "Bob"})
	lamp := store.AddItem(itementity.Item{Name: "Lamp", OwnerID: bob.ID, Price: 12, Image: []string{"lamp.png"}})
	desk := store.AddItem(itementity.Item{Name: "Desk", OwnerID: bob.ID, Price: 40})

	next := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}

	convs := service.New(store.Conversations(), store.Messages()).WithClock(clock)
	users := userservice.New(store.Users())
	items := itemservice.New(store.Items(), 0)

	return &fixture{
		store:  store,
		policy: policy.New(convs, users, items),
		alice:  alice,
		bob:    bob,
		lamp:   lamp,
		desk:   desk,
	}
}

func (f *fixture) start(t *testing.T, itemID string) *policy.StartOutput {
	t.Helper()
	out, err := f.policy.Start(context.Background(), policy.StartInput{
		SenderID:     f.alice.ID,
		ReceiverName: f.bob.Name,
		ItemID:       itemID,
	})
	if err != nil {
		t.Fatalf("Unexpected error starting conversation: %v", err)
	}
	return out
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("new conversation reports the other side", func(t *testing.T) {
		f := newFixture(t)
		out := f.start(t, f.lamp.ID)

		if !out.New {
			t.Error("Expected a new conversation")
		}
		if len(out.Conversation.Participants) != 1 || out.Conversation.Participants[0].ID != f.bob.ID {
			t.Errorf("Expected only Bob as participant, got %+v", out.Conversation.Participants)
		}
		if out.Conversation.Item == nil || out.Conversation.Item.Name != "Lamp" {
			t.Errorf("Expected populated item, got %+v", out.Conversation.Item)
		}
		if out.Conversation.LastMessage != nil {
			t.Errorf("Expected no last message, got %+v", out.Conversation.LastMessage)
		}
		if out.Messages == nil || len(out.Messages) != 0 {
			t.Errorf("Expected an empty message list, got %v", out.Messages)
		}
	})

	t.Run("second call finds the same conversation", func(t *testing.T) {
		f := newFixture(t)
		first := f.start(t, f.lamp.ID)
		second := f.start(t, f.lamp.ID)

		if second.New {
			t.Error("Expected new=false on the second call")
		}
		if second.Conversation.ID != first.Conversation.ID {
			t.Errorf("Expected conversation %s, got %s", first.Conversation.ID, second.Conversation.ID)
		}
		if len(second.Conversation.Participants) != 1 || second.Conversation.Participants[0].ID != f.bob.ID {
			t.Errorf("Expected requester stripped, got %+v", second.Conversation.Participants)
		}
	})

	t.Run("another item updates the conversation in place", func(t *testing.T) {
		f := newFixture(t)
		first := f.start(t, f.lamp.ID)
		second := f.start(t, f.desk.ID)

		if second.Conversation.ID != first.Conversation.ID {
			t.Error("Expected the same conversation")
		}
		if second.Conversation.Item == nil || second.Conversation.Item.ID != f.desk.ID {
			t.Errorf("Expected item Desk, got %+v", second.Conversation.Item)
		}
		if n := f.store.Count().Conversations; n != 1 {
			t.Errorf("Expected 1 conversation, got %d", n)
		}
	})

	t.Run("unknown receiver", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.policy.Start(ctx, policy.StartInput{SenderID: f.alice.ID, ReceiverName: "Nobody", ItemID: f.lamp.ID})
		if !errors.Is(err, userentity.ErrUserNotFound) {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("unknown sender", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.policy.Start(ctx, policy.StartInput{SenderID: "ghost", ReceiverName: f.bob.Name, ItemID: f.lamp.ID})
		if !errors.Is(err, userentity.ErrUserNotFound) {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestSend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	conv := f.start(t, f.lamp.ID)

	if _, err := f.policy.Send(ctx, policy.SendInput{ConversationID: conv.Conversation.ID, SenderID: f.alice.ID, Body: "Is it available?"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	msgs, err := f.policy.Send(ctx, policy.SendInput{ConversationID: conv.Conversation.ID, SenderID: f.bob.ID, Body: "lamp.png", Type: "image"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Sender.Name != "Alice" || msgs[1].Sender.Name != "Bob" {
		t.Errorf("Expected senders Alice then Bob, got %s then %s", msgs[0].Sender.Name, msgs[1].Sender.Name)
	}
	if msgs[1].Type != entity.MessageTypeImage {
		t.Errorf("Expected image message, got '%s'", msgs[1].Type)
	}

	_, err = f.policy.Send(ctx, policy.SendInput{ConversationID: conv.Conversation.ID, SenderID: "outsider", Body: "hi"})
	if !errors.Is(err, entity.ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}
	if n := f.store.Count().Messages; n != 2 {
		t.Errorf("Expected 2 stored messages, got %d", n)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	carol := f.store.AddUser(userentity.User{Name: "Carol", IsArchived: true})

	withBob := f.start(t, f.lamp.ID)
	if _, err := f.policy.Send(ctx, policy.SendInput{ConversationID: withBob.Conversation.ID, SenderID: f.bob.ID, Body: "Still here"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	withCarol, err := f.policy.Start(ctx, policy.StartInput{SenderID: f.alice.ID, ReceiverName: carol.Name, ItemID: f.desk.ID})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	views, err := f.policy.List(ctx, f.alice.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("Expected 2 conversations, got %d", len(views))
	}

	byID := map[string]entity.ConversationView{}
	for _, v := range views {
		byID[v.ID] = v
		for _, p := range v.Participants {
			if p.ID == f.alice.ID {
				t.Errorf("Expected requester stripped from %s", v.ID)
			}
		}
	}

	bobView := byID[withBob.Conversation.ID]
	if bobView.LastMessage == nil || bobView.LastMessage.Body != "Still here" {
		t.Errorf("Expected last message preview, got %+v", bobView.LastMessage)
	}
	carolView := byID[withCarol.Conversation.ID]
	if len(carolView.Participants) != 1 || !carolView.Participants[0].IsArchived {
		t.Errorf("Expected Carol's archived flag, got %+v", carolView.Participants)
	}

	t.Run("archived item drops the conversation", func(t *testing.T) {
		if _, err := f.store.Items().SetArchived(ctx, f.desk.ID, true); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		views, err := f.policy.List(ctx, f.alice.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(views) != 1 || views[0].ID != withBob.Conversation.ID {
			t.Errorf("Expected only the lamp conversation, got %+v", views)
		}
		if _, ok := f.store.Conversation(withCarol.Conversation.ID); !ok {
			t.Error("Expected the conversation document to stay untouched")
		}
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	conv := f.start(t, f.lamp.ID)

	for _, body := range []string{"one", "two", "three"} {
		if _, err := f.policy.Send(ctx, policy.SendInput{ConversationID: conv.Conversation.ID, SenderID: f.alice.ID, Body: body}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	out, err := f.policy.Get(ctx, conv.Conversation.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(out.Messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(out.Messages))
	}
	for i := 1; i < len(out.Messages); i++ {
		if out.Messages[i].CreatedAt.Before(out.Messages[i-1].CreatedAt) {
			t.Errorf("Expected ascending messages at %d", i)
		}
	}
	if len(out.Conversation.Participants) != 2 {
		t.Errorf("Expected both participants, got %+v", out.Conversation.Participants)
	}

	if _, err := f.policy.Get(ctx, "missing"); !errors.Is(err, entity.ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}

	if _, err := f.store.Items().SetArchived(ctx, f.lamp.ID, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := f.policy.Get(ctx, conv.Conversation.ID); !errors.Is(err, entity.ErrItemArchived) {
		t.Errorf("Expected ErrItemArchived, got %v", err)
	}
}
