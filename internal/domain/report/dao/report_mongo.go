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
	"github.com/vadim/campus-market/internal/domain/report/entity"
)

// reportDocument mirrors the itemreports and userreports collections.
// Target is stored under reportedItem or reportedUser depending on the collection.
type reportDocument struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty"`
	Reason     string              `bson:"reason"`
	ReportedBy primitive.ObjectID  `bson:"reportedBy"`
	Status     string              `bson:"status"`
	CreatedAt  time.Time           `bson:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt"`
	Item       *primitive.ObjectID `bson:"reportedItem,omitempty"`
	User       *primitive.ObjectID `bson:"reportedUser,omitempty"`
}

func (d reportDocument) toEntity(kind entity.Kind) entity.Report {
	target := d.Item
	if kind == entity.KindUser {
		target = d.User
	}
	return entity.Report{
		ID:         d.ID.Hex(),
		Kind:       kind,
		Reason:     d.Reason,
		ReportedBy: d.ReportedBy.Hex(),
		TargetID:   database.HexOrEmpty(target),
		Status:     entity.Status(d.Status),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// ReportMongo implements report repository for MongoDB, one collection per kind
type ReportMongo struct {
	coll    *mongo.Collection
	kind    entity.Kind
	timeout time.Duration
}

// NewReportMongo creates a new MongoDB report repository for kind
func NewReportMongo(db *mongo.Database, kind entity.Kind, timeout time.Duration) *ReportMongo {
	name := "itemreports"
	if kind == entity.KindUser {
		name = "userreports"
	}
	return &ReportMongo{coll: db.Collection(name), kind: kind, timeout: timeout}
}

// Create inserts a new report and assigns its ID
func (r *ReportMongo) Create(ctx context.Context, rep *entity.Report) error {
	reporter, okReporter := database.ObjectID(rep.ReportedBy)
	target, okTarget := database.ObjectID(rep.TargetID)
	if !okReporter || !okTarget {
		return fmt.Errorf("invalid report references %q/%q", rep.ReportedBy, rep.TargetID)
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := reportDocument{
		ID:         primitive.NewObjectID(),
		Reason:     rep.Reason,
		ReportedBy: reporter,
		Status:     string(rep.Status),
		CreatedAt:  rep.CreatedAt,
		UpdatedAt:  rep.UpdatedAt,
	}
	if r.kind == entity.KindUser {
		doc.User = &target
	} else {
		doc.Item = &target
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}

	rep.ID = doc.ID.Hex()
	rep.Kind = r.kind
	return nil
}

// List retrieves every report, oldest first
func (r *ReportMongo) List(ctx context.Context) ([]entity.Report, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}

	var docs []reportDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding reports: %w", err)
	}

	reports := make([]entity.Report, len(docs))
	for i, d := range docs {
		reports[i] = d.toEntity(r.kind)
	}
	return reports, nil
}

// SetStatus updates a report's moderation state
func (r *ReportMongo) SetStatus(ctx context.Context, id string, status entity.Status, at time.Time) (*entity.Report, error) {
	oid, ok := database.ObjectID(id)
	if !ok {
		return nil, nil
	}

	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc reportDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status), "updatedAt": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating report: %w", err)
	}

	rep := doc.toEntity(r.kind)
	return &rep, nil
}
