package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vadim/campus-market/internal/domain/report/entity"
)

// Repository defines the interface for report storage scoped to one kind.
// SetStatus returns (nil, nil) when the report does not exist.
type Repository interface {
	Create(ctx context.Context, r *entity.Report) error
	List(ctx context.Context) ([]entity.Report, error)
	SetStatus(ctx context.Context, id string, status entity.Status, at time.Time) (*entity.Report, error)
}

// Service handles report business logic for one kind of report
type Service struct {
	reports Repository
	kind    entity.Kind
	now     func() time.Time
}

// New creates a new report service
func New(reports Repository, kind entity.Kind) *Service {
	return &Service{reports: reports, kind: kind, now: time.Now}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Kind returns the kind of report the service manages
func (s *Service) Kind() entity.Kind {
	return s.kind
}

// CreateInput represents input for filing a report
type CreateInput struct {
	Reason     string
	ReportedBy string
	TargetID   string
}

// Create files a new pending report
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Report, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, entity.ErrEmptyReason
	}
	if in.ReportedBy == "" || in.TargetID == "" {
		return nil, entity.ErrMissingTarget
	}

	now := s.now()
	r := &entity.Report{
		Kind:       s.kind,
		Reason:     in.Reason,
		ReportedBy: in.ReportedBy,
		TargetID:   in.TargetID,
		Status:     entity.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.reports.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("creating %s report: %w", s.kind, err)
	}
	return r, nil
}

// List retrieves every report
func (s *Service) List(ctx context.Context) ([]entity.Report, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing %s reports: %w", s.kind, err)
	}
	if reports == nil {
		reports = []entity.Report{}
	}
	return reports, nil
}

// Resolve marks a report as handled
func (s *Service) Resolve(ctx context.Context, id string) (*entity.Report, error) {
	r, err := s.reports.SetStatus(ctx, id, entity.StatusResolved, s.now())
	if err != nil {
		return nil, fmt.Errorf("resolving %s report: %w", s.kind, err)
	}
	if r == nil {
		return nil, entity.ErrReportNotFound
	}
	return r, nil
}
