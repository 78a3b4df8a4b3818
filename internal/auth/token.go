package auth

import (
	"errors"
	"fmt"
	"time"

	"nestflow/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers bad signatures, expired tokens and malformed claims.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = models.DefaultTokenTTLHours * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(user *models.User) (string, error) {
	if user == nil || user.ID == 0 {
		return "", errors.New("user is required")
	}
	now := m.now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) Parse(tokenString string) (models.AuthenticatedUser, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return models.AuthenticatedUser{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return models.AuthenticatedUser{}, ErrInvalidToken
	}
	if claims.Role != models.RoleGuest && claims.Role != models.RoleHost {
		return models.AuthenticatedUser{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return models.AuthenticatedUser{ID: claims.UserID, Role: claims.Role}, nil
}
