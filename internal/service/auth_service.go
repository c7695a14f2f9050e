package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"medparse/internal/config"
	"medparse/internal/domain"
)

// Claims represents the JWT claims for an API caller.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Token holds an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthService defines the authentication contract: issue a token against the
// configured credential, and verify a presented token into a caller identity.
type AuthService interface {
	IssueToken(username, password string) (*Token, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	username     string
	passwordHash []byte
	cfg          config.JWTConfig
}

// NewAuthService creates an AuthService checking against the single configured
// API credential. The plaintext password from config is hashed once here and
// never kept.
func NewAuthService(api config.APIConfig, cfg config.JWTConfig) (AuthService, error) {
	if api.Password == "" {
		return nil, fmt.Errorf("auth: api.password must be configured")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(api.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hashing configured password: %w", err)
	}
	return &authService{
		username:     api.Username,
		passwordHash: hash,
		cfg:          cfg,
	}, nil
}

func (s *authService) IssueToken(username, password string) (*Token, error) {
	// Evaluate both checks so an unknown username and a wrong password are
	// indistinguishable to the caller.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.Expiry)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenMalformed
	}
	if !token.Valid {
		return nil, domain.ErrTokenMalformed
	}
	return claims, nil
}
