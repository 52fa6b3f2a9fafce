package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	convEntity "github.com/vadim/campus-market/internal/domain/conversation/entity"
	itemEntity "github.com/vadim/campus-market/internal/domain/item/entity"
	orderEntity "github.com/vadim/campus-market/internal/domain/order/entity"
	reportEntity "github.com/vadim/campus-market/internal/domain/report/entity"
	userEntity "github.com/vadim/campus-market/internal/domain/user/entity"
	"github.com/vadim/campus-market/internal/httpx/response"
)

var (
	notFoundErrors = []error{
		convEntity.ErrConversationNotFound,
		itemEntity.ErrItemNotFound,
		orderEntity.ErrOrderNotFound,
		orderEntity.ErrItemOrSellerNotFound,
		reportEntity.ErrReportNotFound,
		userEntity.ErrUserNotFound,
	}
	forbiddenErrors = []error{
		convEntity.ErrItemArchived,
	}
	badRequestErrors = []error{
		convEntity.ErrInvalidRecipient,
		convEntity.ErrEmptyMessage,
		convEntity.ErrInvalidMessageType,
		itemEntity.ErrDescriptionTooShort,
		itemEntity.ErrNoImages,
		itemEntity.ErrNegativePrice,
		itemEntity.ErrEmptyOwner,
		orderEntity.ErrInvalidStatus,
		orderEntity.ErrMissingReference,
		reportEntity.ErrEmptyReason,
		reportEntity.ErrMissingTarget,
		reportEntity.ErrUnknownKind,
		userEntity.ErrEmptyName,
		userEntity.ErrEmptyMobile,
		userEntity.ErrWeakPassword,
	}
	conflictErrors = []error{
		orderEntity.ErrInvalidTransition,
	}
)

func matches(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// handleError maps domain errors to HTTP responses. Unknown errors are
// logged and answered with a generic 500.
func handleError(log *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case matches(err, notFoundErrors):
		response.NotFound(w, err.Error())
	case matches(err, forbiddenErrors):
		response.Forbidden(w, err.Error())
	case matches(err, badRequestErrors):
		response.BadRequest(w, err.Error())
	case matches(err, conflictErrors):
		response.Conflict(w, err.Error())
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		response.InternalError(w, "internal server error")
	}
}
