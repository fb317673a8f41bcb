// Package auth implements the session authority: stateless JWT sessions
// with a hard-coded single-tenant policy where exactly one configured admin
// identity gets mutation rights and everyone else is a read-only visitor.
package auth

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors for session handling.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no valid session")
)

// User is the identity attached to a validated session.
type User struct {
	Email string
	Admin bool
}

// Config holds the single recognised admin identity and token parameters.
type Config struct {
	// AdminEmail is the one identity granted admin capability.
	AdminEmail string
	// AdminPasswordHash is the bcrypt hash of the admin secret.
	AdminPasswordHash string
	// JWTSecret signs session tokens (HS256).
	JWTSecret []byte
	// SessionTTL bounds token lifetime. Zero means 7 days.
	SessionTTL time.Duration
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and validates sessions.
type Service struct {
	cfg Config
	now func() time.Time
}

// NewService creates a session Service from the given config.
func NewService(cfg Config) *Service {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	return &Service{cfg: cfg, now: time.Now}
}

// Login validates the identifier/secret pair and returns a signed session
// token. Only the configured admin identity can log in; anything else fails
// with ErrInvalidCredentials, indistinguishable from a wrong password.
func (s *Service) Login(email, secret string) (string, error) {
	if !strings.EqualFold(email, s.cfg.AdminEmail) {
		// Burn a comparison anyway so unknown identities cost the same as
		// wrong passwords.
		_ = bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(secret))
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(secret)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	claims := sessionClaims{
		Email: s.cfg.AdminEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
			Issuer:    "showcase",
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}
	return token, nil
}

// CurrentUser validates a session token and returns the attached identity.
// The Admin flag is derived from the configured policy at validation time,
// not stored in the token.
func (s *Service) CurrentUser(token string) (User, error) {
	if token == "" {
		return User{}, ErrNoSession
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.cfg.JWTSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return User{}, ErrNoSession
	}

	return User{
		Email: claims.Email,
		Admin: strings.EqualFold(claims.Email, s.cfg.AdminEmail),
	}, nil
}
