package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/possales/pkg/config"
	"github.com/example/possales/pkg/models"
	"github.com/example/possales/pkg/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuthFailed         = errors.New("invalid username or password")
	ErrDuplicateIdentity  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("username and password are required")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const maxUsernameLen = 80

type Service struct {
	users  *repository.UserRepository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewService(users *repository.UserRepository, cfg *config.AuthConfig) *Service {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		users:  users,
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		cost:   cost,
		now:    time.Now,
	}
}

func (s *Service) TokenTTL() time.Duration {
	return s.ttl
}

// Signup stores a new user with a bcrypt hash of password.
func (s *Service) Signup(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || len(username) > maxUsernameLen {
		return nil, ErrInvalidCredentials
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateIdentity
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login checks the credentials and returns the user with a signed session
// token.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrAuthFailed
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrAuthFailed
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *Service) IssueToken(userID uint) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates the signature and expiry and returns the user id.
func (s *Service) ParseToken(token string) (uint, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// Authenticate resolves a token to a user that still exists.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}
