package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vadim/campus-market/internal/domain/item/entity"
	"github.com/vadim/campus-market/internal/domain/item/policy"
	"github.com/vadim/campus-market/internal/domain/item/service"
	"github.com/vadim/campus-market/internal/httpx/request"
	"github.com/vadim/campus-market/internal/httpx/response"
)

// ItemPolicy defines the interface for item operations
type ItemPolicy interface {
	List(ctx context.Context, f entity.Filter) ([]policy.ItemView, error)
	Create(ctx context.Context, in service.CreateInput) (*entity.Item, error)
	Update(ctx context.Context, id string, c entity.Changes) (*entity.Item, error)
	Archive(ctx context.Context, id string) (*entity.Item, error)
	ArchiveMany(ctx context.Context, ids []string) error
	SetStatus(ctx context.Context, id string, archived bool) (*policy.SetStatusOutput, error)
}

// ItemHandler handles HTTP requests for listings
type ItemHandler struct {
	policy ItemPolicy
	log    *zap.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(p ItemPolicy, log *zap.Logger) *ItemHandler {
	return &ItemHandler{policy: p, log: log}
}

// RegisterRoutes registers item routes
func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.List())
		r.Post("/", h.Create())

		// Archive several listings
		r.Post("/deleteMany", h.ArchiveMany())

		r.Put("/{itemId}", h.Update())
		r.Delete("/{itemId}", h.Archive())

		// Archive or recover a listing and its owner's other listings
		r.Put("/{itemId}/status", h.SetStatus())
	})
}

// List handles GET /items
func (h *ItemHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := entity.Filter{
			Search:   q.Get("search"),
			Category: q.Get("category"),
		}

		var err error
		if f.MinPrice, err = parsePrice(q.Get("minPrice")); err != nil {
			response.BadRequest(w, "invalid minPrice")
			return
		}
		if f.MaxPrice, err = parsePrice(q.Get("maxPrice")); err != nil {
			response.BadRequest(w, "invalid maxPrice")
			return
		}

		items, err := h.policy.List(r.Context(), f)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.OK(w, items)
	}
}

func parsePrice(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateItemRequest represents the request body for posting a listing
type CreateItemRequest struct {
	Image       []string `json:"image" validate:"required,min=1,dive,required"`
	Category    string   `json:"category" validate:"required"`
	Condition   string   `json:"condition" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Location    string   `json:"location" validate:"required"`
	Owner       string   `json:"owner" validate:"required"`
}

// Create handles POST /items
func (h *ItemHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateItemRequest
		if request.WriteError(w, request.Decode(r, &req)) {
			return
		}

		item, err := h.policy.Create(r.Context(), service.CreateInput{
			Image:       req.Image,
			Category:    req.Category,
			Condition:   req.Condition,
			Name:        req.Name,
			Description: req.Description,
			Price:       *req.Price,
			Location:    req.Location,
			OwnerID:     req.Owner,
		})
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.Created(w, item)
	}
}

// UpdateItemRequest represents the request body for editing a listing
type UpdateItemRequest struct {
	Image       []string `json:"image,omitempty" validate:"omitempty,dive,required"`
	Category    *string  `json:"category,omitempty"`
	Condition   *string  `json:"condition,omitempty"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Location    *string  `json:"location,omitempty"`
}

// Update handles PUT /items/{itemId}
func (h *ItemHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "itemId")

		var req UpdateItemRequest
		if request.WriteError(w, request.Decode(r, &req)) {
			return
		}

		item, err := h.policy.Update(r.Context(), itemID, entity.Changes{
			Image:       req.Image,
			Category:    req.Category,
			Condition:   req.Condition,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Location:    req.Location,
		})
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.OK(w, item)
	}
}

// Archive handles DELETE /items/{itemId}
func (h *ItemHandler) Archive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := h.policy.Archive(r.Context(), chi.URLParam(r, "itemId"))
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		response.OK(w, item)
	}
}

// ArchiveManyRequest represents the request body for archiving several listings
type ArchiveManyRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// ArchiveMany handles POST /items/deleteMany
func (h *ItemHandler) ArchiveMany() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ArchiveManyRequest
		if request.WriteError(w, request.Decode(r, &req)) {
			return
		}

		if err := h.policy.ArchiveMany(r.Context(), req.IDs); err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.OK(w, map[string][]string{"ids": req.IDs})
	}
}

// SetStatusRequest represents the request body for archiving or recovering a record
type SetStatusRequest struct {
	IsArchived *bool `json:"isArchived" validate:"required"`
}

// SetStatus handles PUT /items/{itemId}/status
func (h *ItemHandler) SetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "itemId")

		var req SetStatusRequest
		if request.WriteError(w, request.Decode(r, &req)) {
			return
		}

		out, err := h.policy.SetStatus(r.Context(), itemID, *req.IsArchived)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.OK(w, out)
	}
}
