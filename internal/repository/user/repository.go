package user

import (
	"context"

	"rotazap-backend/internal/domain"
)

// CreateInput carries the fields needed to register a new account.
type CreateInput struct {
	Email        string
	Username     string
	FullName     string
	PhoneNumber  string
	PasswordHash string
	Role         string
}

// ProfileUpdate holds the mutable profile fields. Nil pointers are left
// untouched.
type ProfileUpdate struct {
	Email       *string
	Username    *string
	FullName    *string
	PhoneNumber *string
	AvatarPath  *string
}

// Repository persists user accounts and password reset tokens.
type Repository interface {
	Create(ctx context.Context, in CreateInput) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Delete(ctx context.Context, id int64) error

	// PriceListID resolves which price list the user buys from.
	PriceListID(ctx context.Context, userID int64) (int64, error)

	UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*domain.User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*domain.User, error)
	SetPassword(ctx context.Context, id int64, passwordHash string) error

	UpsertResetToken(ctx context.Context, token domain.PasswordResetToken) error
	ResetTokenByValue(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	DeleteResetToken(ctx context.Context, userID int64) error
}
