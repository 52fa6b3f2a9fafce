package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vadim/campus-market/internal/domain/user/entity"
	"github.com/vadim/campus-market/internal/domain/user/service"
	"github.com/vadim/campus-market/internal/httpx/request"
	"github.com/vadim/campus-market/internal/httpx/response"
)

// UserPolicy defines the interface for account administration
type UserPolicy interface {
	List(ctx context.Context, includeArchived bool) ([]entity.User, error)
	Update(ctx context.Context, in service.UpdateProfileInput) (*entity.User, error)
	SetStatus(ctx context.Context, id string, archived bool) (string, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler handles HTTP requests for user accounts
type UserHandler struct {
	policy UserPolicy
	log    *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(p UserPolicy, log *zap.Logger) *UserHandler {
	return &UserHandler{policy: p, log: log}
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.List())
		r.Put("/{userId}", h.Update())
		r.Delete("/{userId}", h.Delete())
		r.Put("/{userId}/status", h.SetStatus())
	})
}

// List handles GET /users
func (h *UserHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := r.URL.Query().Get("all") == "true"

		users, err := h.policy.List(r.Context(), all)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.OK(w, users)
	}
}

// UpdateUserRequest represents the request body for editing a profile
type UpdateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Mobile   string `json:"mobile" validate:"required"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// Update handles PUT /users/{userId}
func (h *UserHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		var req UpdateUserRequest
		if request.WriteError(w, request.Decode(r, &req)) {
			return
		}

		user, err := h.policy.Update(r.Context(), service.UpdateProfileInput{
			ID:       userID,
			Name:     req.Name,
			Mobile:   req.Mobile,
			Password: req.Password,
		})
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.OK(w, user)
	}
}

// Delete handles DELETE /users/{userId}
func (h *UserHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.policy.Delete(r.Context(), chi.URLParam(r, "userId")); err != nil {
			handleError(h.log, w, r, err)
			return
		}
		response.Message(w, "user deleted successfully")
	}
}

// SetStatus handles PUT /users/{userId}/status
func (h *UserHandler) SetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")

		var req SetStatusRequest
		if request.WriteError(w, request.Decode(r, &req)) {
			return
		}

		msg, err := h.policy.SetStatus(r.Context(), userID, *req.IsArchived)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.Message(w, msg)
	}
}
