package usecase

import (
	"context"
	"errors"
	"strings"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/pkg/apperror"
)

type authUsecase struct {
	userRepo domain.UserRepository
}

func NewAuthUsecase(userRepo domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

// EnsureUserExists creates the local row for an authenticated subject or
// refreshes its email. Safe to call on every request.
func (u *authUsecase) EnsureUserExists(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" {
		return apperror.BadRequest("Token does not carry an email")
	}
	return u.userRepo.Upsert(ctx, user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
