package service_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/vadim/campus-market/internal/domain/user/entity"
	"github.com/vadim/campus-market/internal/domain/user/service"
	"github.com/vadim/campus-market/internal/testutil/memstore"
)

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes a new password", func(t *testing.T) {
		store := memstore.New()
		svc := service.New(store.Users())
		u := store.AddUser(entity.User{Name: "Eve", Mobile: "0400", PasswordHash: "old"})

		updated, err := svc.UpdateProfile(ctx, service.UpdateProfileInput{ID: u.ID, Name: "Eve B", Mobile: "0411", Password: "correct horse"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if updated.Name != "Eve B" || updated.Mobile != "0411" {
			t.Errorf("Expected profile updated, got %+v", updated)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("correct horse")); err != nil {
			t.Errorf("Expected bcrypt hash of the new password: %v", err)
		}
	})

	t.Run("keeps the password when none given", func(t *testing.T) {
		store := memstore.New()
		svc := service.New(store.Users())
		u := store.AddUser(entity.User{Name: "Eve", Mobile: "0400", PasswordHash: "old"})

		updated, err := svc.UpdateProfile(ctx, service.UpdateProfileInput{ID: u.ID, Name: "Eve", Mobile: "0400"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if updated.PasswordHash != "old" {
			t.Errorf("Expected password untouched, got '%s'", updated.PasswordHash)
		}
	})

	t.Run("validation and lookup", func(t *testing.T) {
		store := memstore.New()
		svc := service.New(store.Users())
		u := store.AddUser(entity.User{Name: "Eve", Mobile: "0400"})

		tests := []struct {
			name string
			in   service.UpdateProfileInput
			want error
		}{
			{name: "empty name", in: service.UpdateProfileInput{ID: u.ID, Mobile: "1"}, want: entity.ErrEmptyName},
			{name: "empty mobile", in: service.UpdateProfileInput{ID: u.ID, Name: "x"}, want: entity.ErrEmptyMobile},
			{name: "weak password", in: service.UpdateProfileInput{ID: u.ID, Name: "x", Mobile: "1", Password: "short"}, want: entity.ErrWeakPassword},
			{name: "unknown user", in: service.UpdateProfileInput{ID: "missing", Name: "x", Mobile: "1"}, want: entity.ErrUserNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := svc.UpdateProfile(ctx, tt.in); !errors.Is(err, tt.want) {
					t.Errorf("Expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := service.New(store.Users())
	store.AddUser(entity.User{Name: "Active"})
	store.AddUser(entity.User{Name: "Gone", IsArchived: true})

	active, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Active" {
		t.Errorf("Expected only the active user, got %+v", active)
	}

	all, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 users, got %d", len(all))
	}
}

func TestGetByName(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := service.New(store.Users())
	first := store.AddUser(entity.User{Name: "Sam"})
	store.AddUser(entity.User{Name: "Sam"})

	u, err := svc.GetByName(ctx, "Sam")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if u == nil || u.ID != first.ID {
		t.Errorf("Expected the first match, got %+v", u)
	}

	none, err := svc.GetByName(ctx, "Nobody")
	if err != nil || none != nil {
		t.Errorf("Expected (nil, nil), got (%+v, %v)", none, err)
	}
}
