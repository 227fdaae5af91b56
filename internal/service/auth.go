package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/tinytales/tinytales-server/internal/crypto"
	"github.com/tinytales/tinytales-server/internal/errs"
	"github.com/tinytales/tinytales-server/internal/limiter"
	"github.com/tinytales/tinytales-server/internal/model"
	"github.com/tinytales/tinytales-server/internal/repository"
)

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 8

// AuthService defines account registration and login.
type AuthService interface {
	// Register creates a new account and returns its id.
	Register(ctx context.Context, username, email, password string) (int64, error)
	// Login authenticates by username or email with rate limiting keyed
	// on (login, client address).
	Login(ctx context.Context, login, password, clientAddr string) (model.Tokens, *model.User, error)
	// VerifyToken parses an access token and returns the subject user id.
	VerifyToken(token string) (int64, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// Register validates and creates a new account.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (int64, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return 0, fmt.Errorf("%w: empty username/password", errs.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return 0, fmt.Errorf("%w: invalid email", errs.ErrValidation)
	}
	if len(password) < MinPasswordLen {
		return 0, fmt.Errorf("%w: password shorter than %d characters", errs.ErrValidation, MinPasswordLen)
	}
	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return 0, err
	}
	return s.users.Create(ctx, &model.User{Username: username, Email: email, PwdHash: hash})
}

// Login authenticates with rate limiting by (login, client).
func (s *AuthServiceImpl) Login(ctx context.Context, login, password, clientAddr string) (model.Tokens, *model.User, error) {
	clientHash := limiter.HashClient(clientAddr)

	allowed, _, err := s.lim.Allow(ctx, login, clientHash)
	if err != nil {
		return model.Tokens{}, nil, err
	}
	if !allowed {
		return model.Tokens{}, nil, errs.ErrRateLimited
	}

	u, err := s.users.GetByLogin(ctx, login)
	if err != nil || !pkgcrypto.VerifyPassword(password, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, login, clientHash); ferr == nil && blocked {
			return model.Tokens{}, nil, errs.ErrRateLimited
		}
		// unknown account and wrong password are indistinguishable
		return model.Tokens{}, nil, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, login, clientHash)
	_ = s.users.TouchLastLogin(ctx, u.ID)

	access, exp, err := s.issueAccessToken(u.ID)
	if err != nil {
		return model.Tokens{}, nil, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, u, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID int64) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// VerifyToken parses and validates an access token, returning the user id.
func (s *AuthServiceImpl) VerifyToken(token string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signKey, nil
	})
	if err != nil || !parsed.Valid {
		return 0, errs.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, errs.ErrUnauthorized
	}
	var id int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &id); err != nil || id <= 0 {
		return 0, errs.ErrUnauthorized
	}
	return id, nil
}
