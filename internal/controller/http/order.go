package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vadim/campus-market/internal/domain/order/entity"
	"github.com/vadim/campus-market/internal/domain/order/policy"
	"github.com/vadim/campus-market/internal/domain/order/service"
	"github.com/vadim/campus-market/internal/httpx/request"
	"github.com/vadim/campus-market/internal/httpx/response"
)

// OrderPolicy defines the interface for order operations
type OrderPolicy interface {
	Create(ctx context.Context, in service.CreateInput) (*entity.Order, error)
	Transition(ctx context.Context, orderID, status string) (*entity.Order, error)
	ListByBuyer(ctx context.Context, userID string) ([]policy.OrderView, error)
	ListBySeller(ctx context.Context, userID string) ([]policy.OrderView, error)
}

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	policy OrderPolicy
	log    *zap.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(p OrderPolicy, log *zap.Logger) *OrderHandler {
	return &OrderHandler{policy: p, log: log}
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		// Place an order
		r.Post("/", h.Create())

		// Change order status
		r.Patch("/{orderId}", h.UpdateStatus())

		// Orders by participant
		r.Get("/buyer/{userId}", h.ListByBuyer())
		r.Get("/seller/{userId}", h.ListBySeller())
	})
}

// CreateOrderRequest represents the request body for placing an order
type CreateOrderRequest struct {
	Item     string `json:"item" validate:"required"`
	ItemName string `json:"itemName" validate:"required"`
	Buyer    string `json:"buyer" validate:"required"`
	Seller   string `json:"seller" validate:"required"`
	Status   string `json:"status,omitempty"`
}

// Create handles POST /orders
func (h *OrderHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateOrderRequest
		if request.WriteError(w, request.Decode(r, &req)) {
			return
		}

		order, err := h.policy.Create(r.Context(), service.CreateInput{
			ItemID:   req.Item,
			ItemName: req.ItemName,
			BuyerID:  req.Buyer,
			SellerID: req.Seller,
			Status:   req.Status,
		})
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.Created(w, order)
	}
}

// UpdateOrderStatusRequest represents the request body for an order status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles PATCH /orders/{orderId}
func (h *OrderHandler) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")

		var req UpdateOrderStatusRequest
		if request.WriteError(w, request.Decode(r, &req)) {
			return
		}

		order, err := h.policy.Transition(r.Context(), orderID, req.Status)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.OK(w, order)
	}
}

// ListByBuyer handles GET /orders/buyer/{userId}
func (h *OrderHandler) ListByBuyer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := h.policy.ListByBuyer(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		response.OK(w, orders)
	}
}

// ListBySeller handles GET /orders/seller/{userId}
func (h *OrderHandler) ListBySeller() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := h.policy.ListBySeller(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		response.OK(w, orders)
	}
}
