package domain

import "time"

// Roles a user account can hold.
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RolePending = "pending"
)

// ValidRole reports whether role belongs to the known role set.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin, RolePending:
		return true
	}
	return false
}

// DefaultPriceListID is used whenever a user's price list cannot be
// determined.
const DefaultPriceListID int64 = 1

// User is a registered marketplace account. Each user is assigned exactly one
// price list at a time.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FullName     string    `json:"fullName"`
	PhoneNumber  string    `json:"phoneNumber"`
	Role         string    `json:"role"`
	AvatarPath   string    `json:"avatarPath,omitempty"`
	PasswordHash string    `json:"-"`
	PriceListID  int64     `json:"priceListId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PasswordResetToken is a short-lived, single-use recovery token. At most one
// token exists per user at a time.
type PasswordResetToken struct {
	UserID    int64
	Token     string
	ExpiresAt time.Time
}
