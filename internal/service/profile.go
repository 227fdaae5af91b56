package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	pkgcrypto "github.com/tinytales/tinytales-server/internal/crypto"
	"github.com/tinytales/tinytales-server/internal/errs"
	"github.com/tinytales/tinytales-server/internal/model"
	"github.com/tinytales/tinytales-server/internal/repository"
)

// ProfileService manages account details, preferences, and writing stats.
type ProfileService interface {
	// Get loads the account.
	Get(ctx context.Context, userID int64) (*model.User, error)
	// UpdateProfile rewrites username and email.
	UpdateProfile(ctx context.Context, userID int64, username, email string) error
	// ChangePassword verifies the current password, then stores a new hash.
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	// Stats returns story count and total words.
	Stats(ctx context.Context, userID int64) (model.Stats, error)
	// Preferences loads generation defaults.
	Preferences(ctx context.Context, userID int64) (model.Preferences, error)
	// SavePreferences validates and stores generation defaults.
	SavePreferences(ctx context.Context, p model.Preferences) error
}

type ProfileServiceImpl struct {
	users repository.UserRepository
}

// NewProfileService constructs ProfileService.
func NewProfileService(users repository.UserRepository) *ProfileServiceImpl {
	return &ProfileServiceImpl{users: users}
}

// Get loads the account.
func (s *ProfileServiceImpl) Get(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile validates and rewrites username and email.
func (s *ProfileServiceImpl) UpdateProfile(ctx context.Context, userID int64, username, email string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return fmt.Errorf("%w: empty username", errs.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", errs.ErrValidation)
	}
	return s.users.UpdateProfile(ctx, userID, username, email)
}

// ChangePassword verifies the current password before storing a new hash.
func (s *ProfileServiceImpl) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if len(next) < MinPasswordLen {
		return fmt.Errorf("%w: password shorter than %d characters", errs.ErrValidation, MinPasswordLen)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !pkgcrypto.VerifyPassword(current, u.PwdHash) {
		return errs.ErrUnauthorized
	}
	hash, err := pkgcrypto.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// Stats returns story count and total words.
func (s *ProfileServiceImpl) Stats(ctx context.Context, userID int64) (model.Stats, error) {
	return s.users.Stats(ctx, userID)
}

// Preferences loads generation defaults.
func (s *ProfileServiceImpl) Preferences(ctx context.Context, userID int64) (model.Preferences, error) {
	return s.users.GetPreferences(ctx, userID)
}

// SavePreferences validates and stores generation defaults.
func (s *ProfileServiceImpl) SavePreferences(ctx context.Context, p model.Preferences) error {
	if p.DefaultWordCount < model.MinWordCount || p.DefaultWordCount > model.MaxWordCount {
		return fmt.Errorf("%w: word count %d outside [%d, %d]",
			errs.ErrValidation, p.DefaultWordCount, model.MinWordCount, model.MaxWordCount)
	}
	if !model.ValidGenre(p.DefaultGenre) {
		return fmt.Errorf("%w: unknown genre %q", errs.ErrValidation, p.DefaultGenre)
	}
	return s.users.SavePreferences(ctx, p)
}
