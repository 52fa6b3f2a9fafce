package policy

import (
	"context"
	"fmt"

	itementity "github.com/vadim/campus-market/internal/domain/item/entity"
	"github.com/vadim/campus-market/internal/domain/report/entity"
	"github.com/vadim/campus-market/internal/domain/report/service"
	userentity "github.com/vadim/campus-market/internal/domain/user/entity"
)

// ReportService defines the interface for the report service
type ReportService interface {
	Kind() entity.Kind
	Create(ctx context.Context, in service.CreateInput) (*entity.Report, error)
	List(ctx context.Context) ([]entity.Report, error)
	Resolve(ctx context.Context, id string) (*entity.Report, error)
}

// UserProvider resolves reporters and reported users
type UserProvider interface {
	GetByIDs(ctx context.Context, ids []string) ([]userentity.User, error)
}

// ItemProvider resolves reported items
type ItemProvider interface {
	GetByIDs(ctx context.Context, ids []string) ([]itementity.Item, error)
}

// Policy handles report operations that need user and item data
type Policy struct {
	svc   ReportService
	users UserProvider
	items ItemProvider
}

// New creates a new report policy
func New(svc ReportService, users UserProvider, items ItemProvider) *Policy {
	return &Policy{svc: svc, users: users, items: items}
}

// Create files a report
func (p *Policy) Create(ctx context.Context, in service.CreateInput) (*entity.Report, error) {
	return p.svc.Create(ctx, in)
}

// Resolve marks a report as handled
func (p *Policy) Resolve(ctx context.Context, id string) (*entity.Report, error) {
	return p.svc.Resolve(ctx, id)
}

// List retrieves every report with reporter and target populated
func (p *Policy) List(ctx context.Context) ([]entity.View, error) {
	reports, err := p.svc.List(ctx)
	if err != nil {
		return nil, err
	}

	kind := p.svc.Kind()
	userIDs := make([]string, 0, 2*len(reports))
	targetIDs := make([]string, 0, len(reports))
	for _, r := range reports {
		userIDs = append(userIDs, r.ReportedBy)
		if kind == entity.KindUser {
			userIDs = append(userIDs, r.TargetID)
		} else {
			targetIDs = append(targetIDs, r.TargetID)
		}
	}

	users, err := p.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("populating users: %w", err)
	}
	usersByID := userentity.Index(users)

	var itemsByID map[string]*itementity.Item
	if len(targetIDs) > 0 {
		items, err := p.items.GetByIDs(ctx, targetIDs)
		if err != nil {
			return nil, fmt.Errorf("populating items: %w", err)
		}
		itemsByID = itementity.Index(items)
	}

	views := make([]entity.View, len(reports))
	for i, r := range reports {
		v := entity.View{Report: r}
		if u, ok := usersByID[r.ReportedBy]; ok {
			v.ReportedBy = u
		}
		if kind == entity.KindUser {
			if u, ok := usersByID[r.TargetID]; ok {
				v.Target = u
			}
		} else if it, ok := itemsByID[r.TargetID]; ok {
			v.Target = it
		}
		views[i] = v
	}
	return views, nil
}
