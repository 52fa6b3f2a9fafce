package dao

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vadim/campus-market/internal/database"
	"github.com/vadim/campus-market/internal/domain/conversation/entity"
)

// messageDocument mirrors the messages collection
type messageDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Conversation primitive.ObjectID `bson:"conversation"`
	Sender       primitive.ObjectID `bson:"sender"`
	Body         string             `bson:"body"`
	Type         string             `bson:"type"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d messageDocument) toEntity() entity.Message {
	return entity.Message{
		ID:             d.ID.Hex(),
		ConversationID: d.Conversation.Hex(),
		SenderID:       d.Sender.Hex(),
		Body:           d.Body,
		Type:           entity.MessageType(d.Type),
		CreatedAt:      d.CreatedAt,
	}
}

// MessageMongo implements message repository for MongoDB
type MessageMongo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMessageMongo creates a new MongoDB message repository
func NewMessageMongo(db *mongo.Database, timeout time.Duration) *MessageMongo {
	return &MessageMongo{coll: db.Collection("messages"), timeout: timeout}
}

// EnsureIndexes creates lookup indexes
func (r *MessageMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "sender", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating message indexes: %w", err)
	}
	return nil
}

// Create inserts a new message and assigns its ID
func (r *MessageMongo) Create(ctx context.Context, msg *entity.Message) error {
	conv, okConv := database.ObjectID(msg.ConversationID)
	sender, okSender := database.ObjectID(msg.SenderID)
	if !okConv || !okSender {
		return fmt.Errorf("invalid message references %q/%q", msg.ConversationID, msg.SenderID)
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := messageDocument{
		ID:           primitive.NewObjectID(),
		Conversation: conv,
		Sender:       sender,
		Body:         msg.Body,
		Type:         string(msg.Type),
		CreatedAt:    msg.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	msg.ID = doc.ID.Hex()
	return nil
}

// GetByIDs retrieves messages for a set of IDs
func (r *MessageMongo) GetByIDs(ctx context.Context, ids []string) ([]entity.Message, error) {
	oids := database.ObjectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

// GetByConversationID retrieves a conversation's messages, oldest first.
// ObjectIDs grow with insertion, so _id breaks createdAt ties.
func (r *MessageMongo) GetByConversationID(ctx context.Context, conversationID string) ([]entity.Message, error) {
	oid, ok := database.ObjectID(conversationID)
	if !ok {
		return nil, nil
	}
	return r.find(ctx, bson.M{"conversation": oid})
}

// DeleteBySenderID removes every message a user sent
func (r *MessageMongo) DeleteBySenderID(ctx context.Context, senderID string) (int64, error) {
	oid, ok := database.ObjectID(senderID)
	if !ok {
		return 0, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"sender": oid})
	if err != nil {
		return 0, fmt.Errorf("deleting messages: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MessageMongo) find(ctx context.Context, filter bson.M) ([]entity.Message, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}

	var docs []messageDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}

	msgs := make([]entity.Message, len(docs))
	for i, d := range docs {
		msgs[i] = d.toEntity()
	}
	return msgs, nil
}
