// Package auth issues and checks the bearer tokens guarding the API.
//
// There is a single account configured through the environment: a username
// and a bcrypt hash of its password. Tokens are HS256 JWTs with the username
// as subject.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

const TokenType = "bearer"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLockedOut          = errors.New("too many failed login attempts")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Config struct {
	Username     string
	PasswordHash string
	Secret       string
	TokenTTL     time.Duration
	MaxAttempts  int
	Lockout      time.Duration
}

// Token is the login response body.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Claims struct {
	jwt.RegisteredClaims
}

type Service struct {
	username    string
	hash        []byte
	secret      []byte
	ttl         time.Duration
	maxAttempts int
	failures    *cache.Cache
	now         func() time.Time
}

func NewService(cfg Config) *Service {
	lockout := cfg.Lockout
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Service{
		username:    cfg.Username,
		hash:        []byte(cfg.PasswordHash),
		secret:      []byte(cfg.Secret),
		ttl:         cfg.TokenTTL,
		maxAttempts: maxAttempts,
		failures:    cache.New(lockout, 2*lockout),
		now:         time.Now,
	}
}

// HashPassword returns the bcrypt hash to put in AUTH_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Login checks the credentials and issues a token. client identifies the
// caller (usually its IP) for lockout accounting.
func (s *Service) Login(ctx context.Context, username, password, client string) (Token, error) {
	key := client + "|" + username
	if n, ok := s.failures.Get(key); ok && n.(int) >= s.maxAttempts {
		slog.WarnContext(ctx, "Login rejected, client locked out", "user", username, "client_ip", client)
		return Token{}, ErrLockedOut
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// always run bcrypt so unknown usernames take as long as bad passwords
	passErr := bcrypt.CompareHashAndPassword(s.hash, []byte(password))
	if !userOK || passErr != nil {
		s.recordFailure(key)
		slog.WarnContext(ctx, "Login failed", "user", username, "client_ip", client)
		return Token{}, ErrInvalidCredentials
	}

	s.failures.Delete(key)
	return s.issue(username)
}

func (s *Service) recordFailure(key string) {
	if _, err := s.failures.IncrementInt(key, 1); err != nil {
		s.failures.SetDefault(key, 1)
	}
}

func (s *Service) issue(username string) (Token, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{AccessToken: signed, TokenType: TokenType, ExpiresAt: expires.UTC()}, nil
}

// Validate parses a token and returns the authenticated username.
func (s *Service) Validate(token string) (string, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject != s.username {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
