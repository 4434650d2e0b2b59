// Package usecase implements public profile lookups.
package usecase

import (
	"context"

	"umarket/internal/feature/users/domain/entity"
)

// ProfileRepository returns domain.ErrUserNotFound when the account does not exist.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Profile, error)
}

// UserUsecase provides read access to user profiles.
type UserUsecase struct {
	repo ProfileRepository
}

// NewUserUsecase creates a new UserUsecase.
func NewUserUsecase(r ProfileRepository) *UserUsecase {
	return &UserUsecase{repo: r}
}

// GetProfile returns the public profile of id.
func (u *UserUsecase) GetProfile(ctx context.Context, id string) (*entity.Profile, error) {
	return u.repo.FindByID(ctx, id)
}
