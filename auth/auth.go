// Package auth issues and verifies the bearer tokens that guard the data
// endpoints.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// User is an account allowed to call the API.
type User struct {
	Username       string
	HashedPassword string
}

// Claims are the JWT claims carried by an access token. The username is the
// subject.
type Claims struct {
	jwt.RegisteredClaims
}

// UserSource looks users up by name. It returns ErrUserNotFound for unknown
// users.
type UserSource interface {
	GetUser(ctx context.Context, username string) (*User, error)
}

// Service authenticates users and signs HS256 access tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	users  UserSource
	log    *zap.Logger
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration, users UserSource, log *zap.Logger) (*Service, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is not set")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{secret: []byte(secret), ttl: ttl, users: users, log: log, now: time.Now}, nil
}

// Authenticate checks a username and password. Lookup failures in the user
// source are logged and reported as invalid credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log.Error("user lookup failed", zap.String("username", username), zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken signs an access token for username.
func (s *Service) IssueToken(username string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a signed token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CurrentUser resolves a token to a user that still exists in the source.
func (s *Service) CurrentUser(ctx context.Context, tokenString string) (*User, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log.Error("user lookup failed", zap.String("username", claims.Subject), zap.Error(err))
		}
		return nil, ErrInvalidToken
	}
	return user, nil
}

// HashPassword bcrypt-hashes a password for storage in a user source.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
