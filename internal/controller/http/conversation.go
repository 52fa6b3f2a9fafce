package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vadim/campus-market/internal/domain/conversation/entity"
	"github.com/vadim/campus-market/internal/domain/conversation/policy"
	"github.com/vadim/campus-market/internal/httpx/request"
	"github.com/vadim/campus-market/internal/httpx/response"
)

// ConversationPolicy defines the interface for conversation operations
type ConversationPolicy interface {
	Start(ctx context.Context, in policy.StartInput) (*policy.StartOutput, error)
	Send(ctx context.Context, in policy.SendInput) ([]entity.MessageView, error)
	List(ctx context.Context, userID string) ([]entity.ConversationView, error)
	Get(ctx context.Context, conversationID string) (*policy.GetOutput, error)
}

// ConversationHandler handles HTTP requests for buyer/seller conversations
type ConversationHandler struct {
	policy ConversationPolicy
	log    *zap.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(p ConversationPolicy, log *zap.Logger) *ConversationHandler {
	return &ConversationHandler{policy: p, log: log}
}

// RegisterRoutes registers conversation routes
func (h *ConversationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/conversations", func(r chi.Router) {
		// Conversation with its messages
		r.Get("/", h.Get())

		// Conversations of a user
		r.Get("/list", h.List())

		// Find or create a conversation
		r.Post("/new", h.Start())

		// Append a message
		r.Post("/new/{conversationId}", h.Send())
	})
}

// StartConversationRequest represents the request body for opening a conversation
type StartConversationRequest struct {
	SenderID     string `json:"senderId" validate:"required"`
	ReceiverName string `json:"receiverName" validate:"required"`
	ItemID       string `json:"itemId" validate:"required"`
}

// Start handles POST /conversations/new
func (h *ConversationHandler) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartConversationRequest
		if request.WriteError(w, request.Decode(r, &req)) {
			return
		}

		out, err := h.policy.Start(r.Context(), policy.StartInput{
			SenderID:     req.SenderID,
			ReceiverName: req.ReceiverName,
			ItemID:       req.ItemID,
		})
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		if out.New {
			response.Created(w, out)
			return
		}
		response.OK(w, out)
	}
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Sender string `json:"sender" validate:"required"`
	Body   string `json:"body" validate:"required"`
	Type   string `json:"type" validate:"omitempty,oneof=text image"`
}

// Send handles POST /conversations/new/{conversationId}
func (h *ConversationHandler) Send() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := chi.URLParam(r, "conversationId")

		var req SendMessageRequest
		if request.WriteError(w, request.Decode(r, &req)) {
			return
		}

		messages, err := h.policy.Send(r.Context(), policy.SendInput{
			ConversationID: conversationID,
			SenderID:       req.Sender,
			Body:           req.Body,
			Type:           req.Type,
		})
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.Created(w, messages)
	}
}

// List handles GET /conversations/list?userId=
func (h *ConversationHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			response.BadRequest(w, "userId is required")
			return
		}

		views, err := h.policy.List(r.Context(), userID)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.OK(w, views)
	}
}

// Get handles GET /conversations?convId=
func (h *ConversationHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convID := r.URL.Query().Get("convId")
		if convID == "" {
			response.BadRequest(w, "convId is required")
			return
		}

		out, err := h.policy.Get(r.Context(), convID)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}

		response.OK(w, out)
	}
}
