package dto

import (
	"time"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
)

// CreateUserRequest creates an application user (admin only).
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	DisplayName string `json:"displayName" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	Role        string `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// UpdateUserRequest updates mutable user fields.
type UpdateUserRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	Password    *string `json:"password,omitempty" binding:"omitempty,min=8"`
	Role        *string `json:"role,omitempty" binding:"omitempty,oneof=ADMIN MEMBER READONLY"`
}

// UserResponse mirrors a persisted user, never including the password hash.
type UserResponse struct {
	UserID      string    `json:"userID"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain user to its DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:      u.UserID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

// LoginRequest authenticates by username and password.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
