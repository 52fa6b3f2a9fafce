package dao

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vadim/campus-market/internal/database"
	"github.com/vadim/campus-market/internal/domain/item/entity"
)

// itemDocument mirrors the items collection
type itemDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Image       []string           `bson:"image"`
	Category    string             `bson:"category"`
	Condition   string             `bson:"condition"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Location    string             `bson:"location"`
	Owner       primitive.ObjectID `bson:"owner"`
	IsArchived  bool               `bson:"isArchived"`
}

func (d itemDocument) toEntity() entity.Item {
	image := d.Image
	if image == nil {
		image = []string{}
	}
	return entity.Item{
		ID:          d.ID.Hex(),
		Image:       image,
		Category:    d.Category,
		Condition:   d.Condition,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Location:    d.Location,
		OwnerID:     d.Owner.Hex(),
		IsArchived:  d.IsArchived,
	}
}

// ItemMongo implements item repository for MongoDB
type ItemMongo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewItemMongo creates a new MongoDB item repository
func NewItemMongo(db *mongo.Database, timeout time.Duration) *ItemMongo {
	return &ItemMongo{coll: db.Collection("items"), timeout: timeout}
}

// EnsureIndexes creates lookup indexes
func (r *ItemMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "isArchived", Value: 1}, {Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating item indexes: %w", err)
	}
	return nil
}

// Create inserts a new item and assigns its ID
func (r *ItemMongo) Create(ctx context.Context, item *entity.Item) error {
	owner, ok := database.ObjectID(item.OwnerID)
	if !ok {
		return fmt.Errorf("invalid owner id %q", item.OwnerID)
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := itemDocument{
		ID:          primitive.NewObjectID(),
		Image:       item.Image,
		Category:    item.Category,
		Condition:   item.Condition,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Location:    item.Location,
		Owner:       owner,
		IsArchived:  item.IsArchived,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}

	item.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves an item by ID
func (r *ItemMongo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	oid, ok := database.ObjectID(id)
	if !ok {
		return nil, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc itemDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}

	item := doc.toEntity()
	return &item, nil
}

// GetByIDs retrieves items for a set of IDs regardless of archive state
func (r *ItemMongo) GetByIDs(ctx context.Context, ids []string) ([]entity.Item, error) {
	oids := database.ObjectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

// List retrieves non-archived items matching the filter
func (r *ItemMongo) List(ctx context.Context, f entity.Filter) ([]entity.Item, error) {
	filter := bson.M{"isArchived": bson.M{"$ne": true}}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
			bson.M{"category": pattern},
			bson.M{"location": pattern},
		}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.OwnerID != "" {
		owner, ok := database.ObjectID(f.OwnerID)
		if !ok {
			return nil, nil
		}
		filter["owner"] = owner
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	return r.find(ctx, filter)
}

// Update applies listing changes
func (r *ItemMongo) Update(ctx context.Context, id string, c entity.Changes) (*entity.Item, error) {
	set := bson.M{}
	if c.Image != nil {
		set["image"] = c.Image
	}
	if c.Category != nil {
		set["category"] = *c.Category
	}
	if c.Condition != nil {
		set["condition"] = *c.Condition
	}
	if c.Name != nil {
		set["name"] = *c.Name
	}
	if c.Description != nil {
		set["description"] = *c.Description
	}
	if c.Price != nil {
		set["price"] = *c.Price
	}
	if c.Location != nil {
		set["location"] = *c.Location
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	return r.findOneAndSet(ctx, id, set)
}

// SetArchived sets the archived flag on one item
func (r *ItemMongo) SetArchived(ctx context.Context, id string, archived bool) (*entity.Item, error) {
	return r.findOneAndSet(ctx, id, bson.M{"isArchived": archived})
}

// SetArchivedMany sets the archived flag on a set of items
func (r *ItemMongo) SetArchivedMany(ctx context.Context, ids []string, archived bool) (int64, error) {
	oids := database.ObjectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}
	return r.updateMany(ctx, bson.M{"_id": bson.M{"$in": oids}}, archived)
}

// SetArchivedByOwner sets the archived flag on every item of an owner
func (r *ItemMongo) SetArchivedByOwner(ctx context.Context, ownerID string, archived bool) (int64, error) {
	owner, ok := database.ObjectID(ownerID)
	if !ok {
		return 0, nil
	}
	return r.updateMany(ctx, bson.M{"owner": owner}, archived)
}

// DeleteByOwner removes every item of an owner
func (r *ItemMongo) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	owner, ok := database.ObjectID(ownerID)
	if !ok {
		return 0, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"owner": owner})
	if err != nil {
		return 0, fmt.Errorf("deleting items: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *ItemMongo) updateMany(ctx context.Context, filter bson.M, archived bool) (int64, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"isArchived": archived}})
	if err != nil {
		return 0, fmt.Errorf("updating items: %w", err)
	}
	return res.MatchedCount, nil
}

func (r *ItemMongo) find(ctx context.Context, filter bson.M) ([]entity.Item, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}

	var docs []itemDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}

	items := make([]entity.Item, len(docs))
	for i, d := range docs {
		items[i] = d.toEntity()
	}
	return items, nil
}

func (r *ItemMongo) findOneAndSet(ctx context.Context, id string, set bson.M) (*entity.Item, error) {
	oid, ok := database.ObjectID(id)
	if !ok {
		return nil, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc itemDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	item := doc.toEntity()
	return &item, nil
}
