package entity

import (
	"errors"
	"time"
)

// Domain errors for orders
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrItemOrSellerNotFound = errors.New("item or user not found")
	ErrInvalidStatus        = errors.New("status must be one of: pending, in delivery, completed, cancelled")
	ErrInvalidTransition    = errors.New("order status transition not allowed")
	ErrMissingReference     = errors.New("item, itemName, buyer and seller are required")
)

// Status is the order lifecycle state
type Status string

// Order statuses
const (
	StatusPending    Status = "pending"
	StatusInDelivery Status = "in delivery"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions lists the states reachable from each non-terminal state
var transitions = map[Status][]Status{
	StatusPending:    {StatusInDelivery, StatusCancelled},
	StatusInDelivery: {StatusCompleted, StatusCancelled},
}

// ParseStatus validates a status value
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusInDelivery, StatusCompleted, StatusCancelled:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an order may move from s to next
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order links a buyer, a seller and an item
type Order struct {
	ID        string    `json:"_id"`
	ItemID    string    `json:"item"`
	ItemName  string    `json:"itemName"`
	BuyerID   string    `json:"buyer"`
	SellerID  string    `json:"seller"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
