package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vadim/campus-market/internal/domain/conversation/entity"
	"github.com/vadim/campus-market/internal/domain/conversation/service"
	"github.com/vadim/campus-market/internal/testutil/memstore"
)

// stepClock returns t0, t0+step, t0+2*step, ...
func stepClock(t0 time.Time, step time.Duration) func() time.Time {
	next := t0
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}

func newService(store *memstore.Store) *service.Service {
	t0 := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	return service.New(store.Conversations(), store.Messages()).WithClock(stepClock(t0, time.Second))
}

func TestFindOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates once then finds", func(t *testing.T) {
		store := memstore.New()
		svc := newService(store)
		in := service.FindOrCreateInput{SenderID: "alice", ReceiverID: "bob", ItemID: "lamp"}

		first, err := svc.FindOrCreate(ctx, in)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !first.Created {
			t.Error("Expected first call to create a conversation")
		}
		if len(first.Messages) != 0 {
			t.Errorf("Expected no messages, got %d", len(first.Messages))
		}

		second, err := svc.FindOrCreate(ctx, in)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if second.Created {
			t.Error("Expected second call to find the existing conversation")
		}
		if second.Conversation.ID != first.Conversation.ID {
			t.Errorf("Expected conversation %s, got %s", first.Conversation.ID, second.Conversation.ID)
		}
	})

	t.Run("participant order does not matter", func(t *testing.T) {
		store := memstore.New()
		svc := newService(store)

		first, _ := svc.FindOrCreate(ctx, service.FindOrCreateInput{SenderID: "alice", ReceiverID: "bob", ItemID: "lamp"})
		second, err := svc.FindOrCreate(ctx, service.FindOrCreateInput{SenderID: "bob", ReceiverID: "alice", ItemID: "lamp"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if second.Created || second.Conversation.ID != first.Conversation.ID {
			t.Error("Expected the reversed pair to reuse the conversation")
		}
	})

	t.Run("new item repoints the existing conversation", func(t *testing.T) {
		store := memstore.New()
		svc := newService(store)

		first, _ := svc.FindOrCreate(ctx, service.FindOrCreateInput{SenderID: "alice", ReceiverID: "bob", ItemID: "lamp"})
		second, err := svc.FindOrCreate(ctx, service.FindOrCreateInput{SenderID: "alice", ReceiverID: "bob", ItemID: "desk"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if second.Created {
			t.Error("Expected no new conversation")
		}
		if second.Conversation.ItemID != "desk" {
			t.Errorf("Expected item 'desk', got '%s'", second.Conversation.ItemID)
		}
		if n := store.Count().Conversations; n != 1 {
			t.Errorf("Expected 1 stored conversation, got %d", n)
		}
		stored, _ := store.Conversation(first.Conversation.ID)
		if stored.ItemID != "desk" {
			t.Errorf("Expected stored item 'desk', got '%s'", stored.ItemID)
		}
	})

	t.Run("rejects talking to yourself", func(t *testing.T) {
		svc := newService(memstore.New())
		_, err := svc.FindOrCreate(ctx, service.FindOrCreateInput{SenderID: "alice", ReceiverID: "alice", ItemID: "lamp"})
		if !errors.Is(err, entity.ErrInvalidRecipient) {
			t.Errorf("Expected ErrInvalidRecipient, got %v", err)
		}
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		store := memstore.New()
		svc := newService(store)
		boom := errors.New("boom")
		store.FailNext(boom)

		_, err := svc.FindOrCreate(ctx, service.FindOrCreateInput{SenderID: "alice", ReceiverID: "bob", ItemID: "lamp"})
		if !errors.Is(err, boom) {
			t.Errorf("Expected wrapped store error, got %v", err)
		}
	})
}

func TestAppendMessage(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*memstore.Store, *service.Service, string) {
		t.Helper()
		store := memstore.New()
		svc := newService(store)
		out, err := svc.FindOrCreate(ctx, service.FindOrCreateInput{SenderID: "alice", ReceiverID: "bob", ItemID: "lamp"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		return store, svc, out.Conversation.ID
	}

	t.Run("updates last message and returns sorted list", func(t *testing.T) {
		store, svc, convID := setup(t)
		before, _ := store.Conversation(convID)

		var msgs []entity.Message
		for i, sender := range []string{"alice", "bob", "alice"} {
			var err error
			msgs, err = svc.AppendMessage(ctx, service.AppendMessageInput{
				ConversationID: convID,
				SenderID:       sender,
				Body:           "hello",
			})
			if err != nil {
				t.Fatalf("Unexpected error on message %d: %v", i, err)
			}
		}

		if len(msgs) != 3 {
			t.Fatalf("Expected 3 messages, got %d", len(msgs))
		}
		for i := 1; i < len(msgs); i++ {
			if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
				t.Errorf("Expected messages sorted by creation time, %d precedes %d", i, i-1)
			}
		}

		after, _ := store.Conversation(convID)
		last := msgs[len(msgs)-1]
		if after.LastMessageID != last.ID {
			t.Errorf("Expected last message %s, got %s", last.ID, after.LastMessageID)
		}
		if after.LastUpdated.Before(before.LastUpdated) {
			t.Errorf("Expected lastUpdated to move forward, got %v before %v", after.LastUpdated, before.LastUpdated)
		}
		if last.Type != entity.MessageTypeText {
			t.Errorf("Expected default type text, got '%s'", last.Type)
		}
	})

	t.Run("lastUpdated never moves backwards", func(t *testing.T) {
		store := memstore.New()
		future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		svc := service.New(store.Conversations(), store.Messages()).WithClock(func() time.Time { return future })
		out, _ := svc.FindOrCreate(ctx, service.FindOrCreateInput{SenderID: "alice", ReceiverID: "bob", ItemID: "lamp"})

		past := future.Add(-time.Hour)
		svc.WithClock(func() time.Time { return past })
		if _, err := svc.AppendMessage(ctx, service.AppendMessageInput{ConversationID: out.Conversation.ID, SenderID: "bob", Body: "hi"}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		conv, _ := store.Conversation(out.Conversation.ID)
		if conv.LastUpdated.Before(future) {
			t.Errorf("Expected lastUpdated >= %v, got %v", future, conv.LastUpdated)
		}
	})

	t.Run("non-participant gets not found and nothing is stored", func(t *testing.T) {
		store, svc, convID := setup(t)

		_, err := svc.AppendMessage(ctx, service.AppendMessageInput{ConversationID: convID, SenderID: "mallory", Body: "hi"})
		if !errors.Is(err, entity.ErrConversationNotFound) {
			t.Errorf("Expected ErrConversationNotFound, got %v", err)
		}
		if n := store.Count().Messages; n != 0 {
			t.Errorf("Expected no stored messages, got %d", n)
		}
	})

	t.Run("unknown conversation", func(t *testing.T) {
		_, svc, _ := setup(t)
		_, err := svc.AppendMessage(ctx, service.AppendMessageInput{ConversationID: "missing", SenderID: "alice", Body: "hi"})
		if !errors.Is(err, entity.ErrConversationNotFound) {
			t.Errorf("Expected ErrConversationNotFound, got %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		_, svc, convID := setup(t)

		tests := []struct {
			name string
			in   service.AppendMessageInput
			want error
		}{
			{name: "empty body", in: service.AppendMessageInput{ConversationID: convID, SenderID: "alice", Body: "  "}, want: entity.ErrEmptyMessage},
			{name: "bad type", in: service.AppendMessageInput{ConversationID: convID, SenderID: "alice", Body: "x", Type: "video"}, want: entity.ErrInvalidMessageType},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := svc.AppendMessage(ctx, tt.in); !errors.Is(err, tt.want) {
					t.Errorf("Expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestGetAndDelete(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := newService(store)

	out, _ := svc.FindOrCreate(ctx, service.FindOrCreateInput{SenderID: "alice", ReceiverID: "bob", ItemID: "lamp"})
	_, _ = svc.FindOrCreate(ctx, service.FindOrCreateInput{SenderID: "carol", ReceiverID: "dave", ItemID: "desk"})
	_, _ = svc.AppendMessage(ctx, service.AppendMessageInput{ConversationID: out.Conversation.ID, SenderID: "alice", Body: "hi"})

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, entity.ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}

	convs, err := svc.ListForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(convs) != 1 {
		t.Errorf("Expected 1 conversation for alice, got %d", len(convs))
	}

	if err := svc.DeleteForUser(ctx, "alice"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	counts := store.Count()
	if counts.Conversations != 1 || counts.Messages != 0 {
		t.Errorf("Expected 1 conversation and 0 messages left, got %+v", counts)
	}
}
