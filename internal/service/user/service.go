// Package user implements account management: registration, profile and role
// updates, and the password reset flow.
package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"rotazap-backend/internal/domain"
	userrepo "rotazap-backend/internal/repository/user"
)

type userRepo interface {
	Create(ctx context.Context, in userrepo.CreateInput) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	UpdateProfile(ctx context.Context, id int64, upd userrepo.ProfileUpdate) (*domain.User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*domain.User, error)
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	UpsertResetToken(ctx context.Context, token domain.PasswordResetToken) error
	ResetTokenByValue(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	DeleteResetToken(ctx context.Context, userID int64) error
}

type sender interface {
	Welcome(ctx context.Context, to, name string) error
	ProfileUpdated(ctx context.Context, to, name string, changed []string) error
	PasswordReset(ctx context.Context, to, token string) error
	PasswordResetDone(ctx context.Context, to string) error
}

type roleNotifier interface {
	RoleChanged(ctx context.Context, userID int64, role string)
}

type Service struct {
	repo     userRepo
	mailer   sender
	notifier roleNotifier
	tokenTTL time.Duration
	logger   *log.Logger
}

func New(repo userRepo, mailer sender, notifier roleNotifier, tokenTTL time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if tokenTTL <= 0 {
		tokenTTL = 15 * time.Minute
	}
	return &Service{repo: repo, mailer: mailer, notifier: notifier, tokenTTL: tokenTTL, logger: logger}
}

// RegisterInput is one sign-up request.
type RegisterInput struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// Register creates a pending account and sends the welcome email. Failing to
// send the email rolls the registration back so the user can retry.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.Validation("invalid email address")
	}
	if len(in.Password) < 8 {
		return nil, domain.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, userrepo.CreateInput{
		Email:        email,
		Username:     strings.TrimSpace(in.Username),
		FullName:     strings.TrimSpace(in.FullName),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		PasswordHash: string(hash),
		Role:         domain.RolePending,
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailer.Welcome(ctx, u.Email, u.FullName); err != nil {
		if delErr := s.repo.Delete(ctx, u.ID); delErr != nil {
			s.logger.Printf("user service: rollback of user %d after email failure: %v", u.ID, delErr)
		}
		return nil, fmt.Errorf("send welcome email: %w", err)
	}
	return u, nil
}

// Authenticate checks the credentials and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// Get fetches one account.
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ProfileInput carries the optional profile changes.
type ProfileInput struct {
	Email       *string `json:"email,omitempty"`
	Username    *string `json:"username,omitempty"`
	FullName    *string `json:"fullName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	AvatarPath  *string `json:"avatarPath,omitempty"`
}

// UpdateProfile applies the changes and notifies the account's email about
// what changed. An email delivery failure fails the whole call, but the
// profile change itself is already persisted at that point.
func (s *Service) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (*domain.User, error) {
	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, domain.Validation("invalid email address")
		}
		in.Email = &email
	}

	var changed []string
	add := func(name string, v *string) {
		if v != nil {
			changed = append(changed, name)
		}
	}
	add("email", in.Email)
	add("username", in.Username)
	add("full name", in.FullName)
	add("phone number", in.PhoneNumber)
	add("avatar", in.AvatarPath)
	if len(changed) == 0 {
		return s.repo.GetByID(ctx, id)
	}

	u, err := s.repo.UpdateProfile(ctx, id, userrepo.ProfileUpdate{
		Email:       in.Email,
		Username:    in.Username,
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
		AvatarPath:  in.AvatarPath,
	})
	if err != nil {
		return nil, err
	}

	if err := s.mailer.ProfileUpdated(ctx, u.Email, u.FullName, changed); err != nil {
		return nil, fmt.Errorf("send profile update email: %w", err)
	}
	return u, nil
}

// UpdateRole sets the account role and announces the change over pub/sub so
// active sessions pick it up immediately.
func (s *Service) UpdateRole(ctx context.Context, id int64, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.Validation(fmt.Sprintf("unknown role %q", role))
	}
	u, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.RoleChanged(ctx, u.ID, u.Role)
	}
	return u, nil
}

// InitiatePasswordReset issues a short-lived token and mails the reset link.
// An unknown email is reported as domain.ErrNotFound.
func (s *Service) InitiatePasswordReset(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := s.repo.UpsertResetToken(ctx, domain.PasswordResetToken{
		UserID:    u.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenTTL),
	}); err != nil {
		return err
	}
	return s.mailer.PasswordReset(ctx, u.Email, token)
}

// ResetPassword consumes a valid token and sets the new password. Expired or
// unknown tokens yield domain.ErrNotFound.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return domain.Validation("password must be at least 8 characters")
	}
	t, err := s.repo.ResetTokenByValue(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.SetPassword(ctx, t.UserID, string(hash)); err != nil {
		return err
	}
	if err := s.repo.DeleteResetToken(ctx, t.UserID); err != nil {
		s.logger.Printf("user service: delete consumed reset token for user %d: %v", t.UserID, err)
	}

	u, err := s.repo.GetByID(ctx, t.UserID)
	if err == nil {
		if mailErr := s.mailer.PasswordResetDone(ctx, u.Email); mailErr != nil {
			s.logger.Printf("user service: reset confirmation email for user %d: %v", t.UserID, mailErr)
		}
	}
	return nil
}
