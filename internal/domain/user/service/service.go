package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vadim/campus-market/internal/domain/user/entity"
)

// Repository defines the interface for user storage.
// Lookups return (nil, nil) when nothing matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByName(ctx context.Context, name string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	List(ctx context.Context, includeArchived bool) ([]entity.User, error)
	UpdateProfile(ctx context.Context, id string, p entity.Profile) (*entity.User, error)
	SetArchived(ctx context.Context, id string, archived bool) (*entity.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// PasswordCost is the bcrypt work factor
const PasswordCost = 10

// Service handles user business logic
type Service struct {
	users Repository
}

// New creates a new user service
func New(users Repository) *Service {
	return &Service{users: users}
}

// GetByID retrieves a user, returning nil when absent
func (s *Service) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetByName resolves a display name to the first matching user
func (s *Service) GetByName(ctx context.Context, name string) (*entity.User, error) {
	u, err := s.users.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("getting user by name: %w", err)
	}
	return u, nil
}

// GetByIDs retrieves users for a set of IDs
func (s *Service) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	users, err := s.users.GetByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, fmt.Errorf("getting users: %w", err)
	}
	return users, nil
}

// List retrieves users
func (s *Service) List(ctx context.Context, includeArchived bool) ([]entity.User, error) {
	users, err := s.users.List(ctx, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

// UpdateProfileInput represents input for updating a profile
type UpdateProfileInput struct {
	ID       string
	Name     string
	Mobile   string
	Password string // optional
}

// UpdateProfile updates name/mobile and, when given, the password
func (s *Service) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*entity.User, error) {
	if in.Name == "" {
		return nil, entity.ErrEmptyName
	}
	if in.Mobile == "" {
		return nil, entity.ErrEmptyMobile
	}

	profile := entity.Profile{Name: in.Name, Mobile: in.Mobile}
	if in.Password != "" {
		if len(in.Password) < entity.MinPasswordLength {
			return nil, entity.ErrWeakPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), PasswordCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		profile.PasswordHash = string(hash)
	}

	u, err := s.users.UpdateProfile(ctx, in.ID, profile)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	if u == nil {
		return nil, entity.ErrUserNotFound
	}
	return u, nil
}

// SetArchived archives or recovers an account
func (s *Service) SetArchived(ctx context.Context, id string, archived bool) (*entity.User, error) {
	u, err := s.users.SetArchived(ctx, id, archived)
	if err != nil {
		return nil, fmt.Errorf("setting user status: %w", err)
	}
	if u == nil {
		return nil, entity.ErrUserNotFound
	}
	return u, nil
}

// Delete removes the user record
func (s *Service) Delete(ctx context.Context, id string) error {
	found, err := s.users.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if !found {
		return entity.ErrUserNotFound
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
