package entity

import "errors"

// Domain errors for users
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrEmptyMobile  = errors.New("mobile cannot be empty")
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// User represents a marketplace account
type User struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	PasswordHash string `json:"-"`
	IsVerified   bool   `json:"isVerified"`
	IsAdmin      bool   `json:"isAdmin"`
	IsArchived   bool   `json:"isArchived"`
}

// Profile holds the editable account fields
type Profile struct {
	Name         string
	Mobile       string
	PasswordHash string // empty keeps the current password
}

// StatusMessage describes an archive flag change
func StatusMessage(archived bool) string {
	if archived {
		return "User archived successfully"
	}
	return "User recovered successfully"
}

// Index maps users by ID
func Index(users []User) map[string]*User {
	out := make(map[string]*User, len(users))
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out
}
