package services

import (
	"context"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
)

// UserSvcFacade exposes user management and credential verification.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error)
	DeactivateUser(ctx context.Context, userID string, updaterUserID string) error

	// Authenticate verifies a username/password pair and returns the user.
	// Inactive users and bad credentials both yield ErrUnauthorized.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}
