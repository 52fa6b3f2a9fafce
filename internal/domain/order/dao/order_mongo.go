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
	"github.com/vadim/campus-market/internal/domain/order/entity"
)

// orderDocument mirrors the orders collection
type orderDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Item      primitive.ObjectID `bson:"item"`
	ItemName  string             `bson:"itemName"`
	Buyer     primitive.ObjectID `bson:"buyer"`
	Seller    primitive.ObjectID `bson:"seller"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d orderDocument) toEntity() entity.Order {
	return entity.Order{
		ID:        d.ID.Hex(),
		ItemID:    d.Item.Hex(),
		ItemName:  d.ItemName,
		BuyerID:   d.Buyer.Hex(),
		SellerID:  d.Seller.Hex(),
		Status:    entity.Status(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// OrderMongo implements order repository for MongoDB
type OrderMongo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewOrderMongo creates a new MongoDB order repository
func NewOrderMongo(db *mongo.Database, timeout time.Duration) *OrderMongo {
	return &OrderMongo{coll: db.Collection("orders"), timeout: timeout}
}

// EnsureIndexes creates lookup indexes
func (r *OrderMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "buyer", Value: 1}}},
		{Keys: bson.D{{Key: "seller", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating order indexes: %w", err)
	}
	return nil
}

// Create inserts a new order and assigns its ID
func (r *OrderMongo) Create(ctx context.Context, o *entity.Order) error {
	item, okItem := database.ObjectID(o.ItemID)
	buyer, okBuyer := database.ObjectID(o.BuyerID)
	seller, okSeller := database.ObjectID(o.SellerID)
	if !okItem || !okBuyer || !okSeller {
		return fmt.Errorf("invalid order references %q/%q/%q", o.ItemID, o.BuyerID, o.SellerID)
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := orderDocument{
		ID:        primitive.NewObjectID(),
		Item:      item,
		ItemName:  o.ItemName,
		Buyer:     buyer,
		Seller:    seller,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	o.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves an order by ID
func (r *OrderMongo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	oid, ok := database.ObjectID(id)
	if !ok {
		return nil, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc orderDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding order: %w", err)
	}

	o := doc.toEntity()
	return &o, nil
}

// UpdateStatus sets the order status
func (r *OrderMongo) UpdateStatus(ctx context.Context, id string, status entity.Status, at time.Time) (*entity.Order, error) {
	oid, ok := database.ObjectID(id)
	if !ok {
		return nil, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc orderDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status), "updatedAt": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating order: %w", err)
	}

	o := doc.toEntity()
	return &o, nil
}

// ListByBuyer retrieves a buyer's orders, newest first
func (r *OrderMongo) ListByBuyer(ctx context.Context, userID string) ([]entity.Order, error) {
	return r.listBy(ctx, "buyer", userID)
}

// ListBySeller retrieves a seller's orders, newest first
func (r *OrderMongo) ListBySeller(ctx context.Context, userID string) ([]entity.Order, error) {
	return r.listBy(ctx, "seller", userID)
}

// DeleteByUser removes every order where the user is buyer or seller
func (r *OrderMongo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	oid, ok := database.ObjectID(userID)
	if !ok {
		return 0, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"$or": bson.A{bson.M{"buyer": oid}, bson.M{"seller": oid}}})
	if err != nil {
		return 0, fmt.Errorf("deleting orders: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *OrderMongo) listBy(ctx context.Context, field, userID string) ([]entity.Order, error) {
	oid, ok := database.ObjectID(userID)
	if !ok {
		return nil, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{field: oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}

	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding orders: %w", err)
	}

	orders := make([]entity.Order, len(docs))
	for i, d := range docs {
		orders[i] = d.toEntity()
	}
	return orders, nil
}
