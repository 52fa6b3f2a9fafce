package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vadim/campus-market/internal/domain/report/entity"
	"github.com/vadim/campus-market/internal/domain/report/service"
	"github.com/vadim/campus-market/internal/httpx/request"
	"github.com/vadim/campus-market/internal/httpx/response"
)

// ReportPolicy defines the interface for moderation reports of one kind
type ReportPolicy interface {
	Create(ctx context.Context, in service.CreateInput) (*entity.Report, error)
	List(ctx context.Context) ([]entity.View, error)
	Resolve(ctx context.Context, id string) (*entity.Report, error)
}

// ReportHandler handles HTTP requests for item or user reports
type ReportHandler struct {
	kind   entity.Kind
	policy ReportPolicy
	log    *zap.Logger
}

// NewReportHandler creates a report handler for kind
func NewReportHandler(kind entity.Kind, p ReportPolicy, log *zap.Logger) *ReportHandler {
	return &ReportHandler{kind: kind, policy: p, log: log}
}

// Path is the route prefix for the handler's report kind
func (h *ReportHandler) Path() string {
	if h.kind == entity.KindUser {
		return "/userReports"
	}
	return "/itemReports"
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route(h.Path(), func(r chi.Router) {
		r.Post("/", h.Create())
		r.Get("/", h.List())
		r.Put("/{reportId}/resolve", h.Resolve())
	})
}

// CreateReportRequest represents the request body for filing a report.
// Only the target field matching the handler's kind is read.
type CreateReportRequest struct {
	Reason       string `json:"reason" validate:"required"`
	ReportedBy   string `json:"reportedBy" validate:"required"`
	ReportedItem string `json:"reportedItem,omitempty"`
	ReportedUser string `json:"reportedUser,omitempty"`
}

func (req CreateReportRequest) target(kind entity.Kind) string {
	if kind == entity.KindUser {
		return req.ReportedUser
	}
	return req.ReportedItem
}

// Create handles POST /{kind}Reports
func (h *ReportHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateReportRequest
		if request.WriteError(w, request.Decode(r, &req)) {
			return
		}

		target := req.target(h.kind)
		if target == "" {
			response.BadRequest(w, h.kind.TargetField()+" is required")
			return
		}

		report, err := h.policy.Create(r.Context(), service.CreateInput{
			Reason:     req.Reason,
			ReportedBy: req.ReportedBy,
			TargetID:   target,
		})
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.Created(w, report)
	}
}

// List handles GET /{kind}Reports
func (h *ReportHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := h.policy.List(r.Context())
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		response.OK(w, views)
	}
}

// Resolve handles PUT /{kind}Reports/{reportId}/resolve
func (h *ReportHandler) Resolve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := h.policy.Resolve(r.Context(), chi.URLParam(r, "reportId"))
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		response.OK(w, report)
	}
}
