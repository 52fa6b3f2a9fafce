package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultQueryTimeout bounds a single store round trip when none is configured
const DefaultQueryTimeout = 5 * time.Second

// WithTimeout derives a context bounded by d (or DefaultQueryTimeout)
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, d)
}

// ObjectID parses a hex identifier. ok is false for malformed ids,
// which callers treat as "no such document".
func ObjectID(id string) (oid primitive.ObjectID, ok bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// ObjectIDs parses a list of hex identifiers, skipping malformed ones
func ObjectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := ObjectID(id); ok {
			out = append(out, oid)
		}
	}
	return out
}

// HexOrEmpty renders an optional reference
func HexOrEmpty(oid *primitive.ObjectID) string {
	if oid == nil || oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

// OptionalObjectID converts an optional reference; empty or malformed ids become nil
func OptionalObjectID(id string) *primitive.ObjectID {
	if id == "" {
		return nil
	}
	oid, ok := ObjectID(id)
	if !ok {
		return nil
	}
	return &oid
}

// NullableString maps "" to a SQL NULL
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringOrEmpty dereferences a nullable column
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
