package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vadim/campus-market/internal/database"
	"github.com/vadim/campus-market/internal/domain/conversation/entity"
)

// conversationDocument mirrors the conversations collection
type conversationDocument struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Participants []primitive.ObjectID `bson:"participants"`
	Item         *primitive.ObjectID  `bson:"item"`
	LastMessage  *primitive.ObjectID  `bson:"lastMessage"`
	CreatedAt    time.Time            `bson:"createdAt"`
	LastUpdated  time.Time            `bson:"lastUpdated"`
	IsArchived   bool                 `bson:"isArchived"`
}

func (d conversationDocument) toEntity() entity.Conversation {
	participants := make([]string, len(d.Participants))
	for i, p := range d.Participants {
		participants[i] = p.Hex()
	}
	return entity.Conversation{
		ID:            d.ID.Hex(),
		Participants:  participants,
		ItemID:        database.HexOrEmpty(d.Item),
		LastMessageID: database.HexOrEmpty(d.LastMessage),
		LastUpdated:   d.LastUpdated,
		CreatedAt:     d.CreatedAt,
		IsArchived:    d.IsArchived,
	}
}

// ConversationMongo implements conversation repository for MongoDB
type ConversationMongo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewConversationMongo creates a new MongoDB conversation repository
func NewConversationMongo(db *mongo.Database, timeout time.Duration) *ConversationMongo {
	return &ConversationMongo{coll: db.Collection("conversations"), timeout: timeout}
}

// EnsureIndexes creates lookup indexes
func (r *ConversationMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "participants", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("creating conversation indexes: %w", err)
	}
	return nil
}

// Create inserts a new conversation and assigns its ID
func (r *ConversationMongo) Create(ctx context.Context, conv *entity.Conversation) error {
	participants := database.ObjectIDs(conv.Participants)
	if len(participants) != len(conv.Participants) {
		return fmt.Errorf("invalid participant ids %v", conv.Participants)
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := conversationDocument{
		ID:           primitive.NewObjectID(),
		Participants: participants,
		Item:         database.OptionalObjectID(conv.ItemID),
		LastMessage:  database.OptionalObjectID(conv.LastMessageID),
		CreatedAt:    conv.CreatedAt,
		LastUpdated:  conv.LastUpdated,
		IsArchived:   conv.IsArchived,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting conversation: %w", err)
	}

	conv.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a conversation by ID
func (r *ConversationMongo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	oid, ok := database.ObjectID(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByParticipants retrieves the conversation held by exactly a and b
func (r *ConversationMongo) FindByParticipants(ctx context.Context, a, b string) (*entity.Conversation, error) {
	oa, okA := database.ObjectID(a)
	ob, okB := database.ObjectID(b)
	if !okA || !okB {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"participants": bson.M{"$all": bson.A{oa, ob}, "$size": 2}})
}

// GetByParticipantID retrieves every conversation a user takes part in, most recent first
func (r *ConversationMongo) GetByParticipantID(ctx context.Context, userID string) ([]entity.Conversation, error) {
	oid, ok := database.ObjectID(userID)
	if !ok {
		return nil, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "lastUpdated", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"participants": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}

	var docs []conversationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding conversations: %w", err)
	}

	convs := make([]entity.Conversation, len(docs))
	for i, d := range docs {
		convs[i] = d.toEntity()
	}
	return convs, nil
}

// SetItem points the conversation at another item
func (r *ConversationMongo) SetItem(ctx context.Context, id, itemID string) error {
	return r.updateOne(ctx, id, bson.M{"item": database.OptionalObjectID(itemID)})
}

// SetLastMessage records the latest message and its time
func (r *ConversationMongo) SetLastMessage(ctx context.Context, id, messageID string, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{
		"lastMessage": database.OptionalObjectID(messageID),
		"lastUpdated": at,
	})
}

// DeleteByParticipantID removes every conversation a user takes part in
func (r *ConversationMongo) DeleteByParticipantID(ctx context.Context, userID string) (int64, error) {
	oid, ok := database.ObjectID(userID)
	if !ok {
		return 0, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"participants": oid})
	if err != nil {
		return 0, fmt.Errorf("deleting conversations: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ConversationMongo) findOne(ctx context.Context, filter bson.M) (*entity.Conversation, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc conversationDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding conversation: %w", err)
	}

	conv := doc.toEntity()
	return &conv, nil
}

func (r *ConversationMongo) updateOne(ctx context.Context, id string, set bson.M) error {
	oid, ok := database.ObjectID(id)
	if !ok {
		return fmt.Errorf("invalid conversation id %q", id)
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("updating conversation: %w", err)
	}
	return nil
}
