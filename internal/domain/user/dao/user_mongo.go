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
	"github.com/vadim/campus-market/internal/domain/user/entity"
)

// userDocument mirrors the users collection
type userDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email"`
	Mobile     string             `bson:"mobile"`
	Password   string             `bson:"password"`
	IsVerified bool               `bson:"isVerified"`
	IsAdmin    bool               `bson:"isAdmin"`
	IsArchived bool               `bson:"isArchived"`
}

func (d userDocument) toEntity() entity.User {
	return entity.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Mobile:       d.Mobile,
		PasswordHash: d.Password,
		IsVerified:   d.IsVerified,
		IsAdmin:      d.IsAdmin,
		IsArchived:   d.IsArchived,
	}
}

// UserMongo implements user repository for MongoDB
type UserMongo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewUserMongo creates a new MongoDB user repository
func NewUserMongo(db *mongo.Database, timeout time.Duration) *UserMongo {
	return &UserMongo{coll: db.Collection("users"), timeout: timeout}
}

// EnsureIndexes creates lookup indexes
func (r *UserMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("creating user indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserMongo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	oid, ok := database.ObjectID(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetByName retrieves the first user with the given display name
func (r *UserMongo) GetByName(ctx context.Context, name string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

// GetByIDs retrieves users for a set of IDs
func (r *UserMongo) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	oids := database.ObjectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

// List retrieves users, optionally including archived accounts
func (r *UserMongo) List(ctx context.Context, includeArchived bool) ([]entity.User, error) {
	filter := bson.M{}
	if !includeArchived {
		filter["isArchived"] = bson.M{"$ne": true}
	}
	return r.find(ctx, filter)
}

// UpdateProfile updates the editable profile fields
func (r *UserMongo) UpdateProfile(ctx context.Context, id string, p entity.Profile) (*entity.User, error) {
	set := bson.M{"name": p.Name, "mobile": p.Mobile}
	if p.PasswordHash != "" {
		set["password"] = p.PasswordHash
	}
	return r.findOneAndSet(ctx, id, set)
}

// SetArchived sets the archived flag
func (r *UserMongo) SetArchived(ctx context.Context, id string, archived bool) (*entity.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"isArchived": archived})
}

// Delete removes a user, reporting whether it existed
func (r *UserMongo) Delete(ctx context.Context, id string) (bool, error) {
	oid, ok := database.ObjectID(id)
	if !ok {
		return false, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("deleting user: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *UserMongo) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}

	u := doc.toEntity()
	return &u, nil
}

func (r *UserMongo) find(ctx context.Context, filter bson.M) ([]entity.User, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}

	users := make([]entity.User, len(docs))
	for i, d := range docs {
		users[i] = d.toEntity()
	}
	return users, nil
}

func (r *UserMongo) findOneAndSet(ctx context.Context, id string, set bson.M) (*entity.User, error) {
	oid, ok := database.ObjectID(id)
	if !ok {
		return nil, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc userDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	u := doc.toEntity()
	return &u, nil
}
