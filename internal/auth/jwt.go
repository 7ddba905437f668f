package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/buildcraft-as/construct-api/internal/config"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the session token payload
type Claims struct {
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	CompanyID  string     `json:"companyId"`
	Role       string     `json:"role"`
	CustomerID *uuid.UUID `json:"customerId,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 session tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager from auth config
func NewTokenManager(cfg *config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTLDuration(),
	}
}

// Issue creates a signed session token for the given user context
func (m *TokenManager) Issue(user *UserContext) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		Email:      user.Email,
		Name:       user.Name,
		CompanyID:  user.CompanyID.String(),
		Role:       string(user.Role),
		CustomerID: user.CustomerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate parses and validates a session token and returns the user context
func (m *TokenManager) Validate(tokenString string) (*UserContext, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	companyID, err := uuid.Parse(claims.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad company id", ErrInvalidToken)
	}

	role := domain.MembershipRole(claims.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: bad role", ErrInvalidToken)
	}

	return &UserContext{
		UserID:     userID,
		Email:      claims.Email,
		Name:       claims.Name,
		CompanyID:  companyID,
		Role:       role,
		CustomerID: claims.CustomerID,
	}, nil
}
