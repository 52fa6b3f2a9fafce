package entity

import (
	"encoding/json"
	"errors"
	"time"
)

// Domain errors for reports
var (
	ErrReportNotFound = errors.New("report not found")
	ErrEmptyReason    = errors.New("reason is required")
	ErrMissingTarget  = errors.New("reporter and reported target are required")
	ErrUnknownKind    = errors.New("unknown report kind")
)

// Kind is what a report is about
type Kind string

// Report kinds
const (
	KindItem Kind = "item"
	KindUser Kind = "user"
)

// TargetField is the JSON name of the reported reference
func (k Kind) TargetField() string {
	if k == KindUser {
		return "reportedUser"
	}
	return "reportedItem"
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	return k == KindItem || k == KindUser
}

// Status is the moderation state of a report
type Status string

// Report statuses
const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// Report flags an item or a user for moderation
type Report struct {
	ID         string
	Kind       Kind
	Reason     string
	ReportedBy string
	TargetID   string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MarshalJSON names the target reportedItem or reportedUser by kind
func (r Report) MarshalJSON() ([]byte, error) {
	return marshal(r, r.ReportedBy, r.TargetID)
}

// View is a report with reporter and target populated.
// Target is the reported item or user.
type View struct {
	Report
	ReportedBy interface{}
	Target     interface{}
}

// MarshalJSON renders the populated references in place of the IDs
func (v View) MarshalJSON() ([]byte, error) {
	return marshal(v.Report, v.ReportedBy, v.Target)
}

func marshal(r Report, reportedBy, target interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"_id":                r.ID,
		"reason":             r.Reason,
		"reportedBy":         reportedBy,
		r.Kind.TargetField(): target,
		"status":             r.Status,
		"createdAt":          r.CreatedAt,
		"updatedAt":          r.UpdatedAt,
	})
}
