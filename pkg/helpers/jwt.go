package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/streamhive/streamhive/internal/domain/entity"
	"github.com/streamhive/streamhive/pkg/apperr"
)

// TokenKind selects which secret and claim set a token is verified
// against. Access tokens carry the full identity; refresh tokens carry
// only the user id so a leaked refresh token reveals nothing else.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// TokenConfig is the explicit signing configuration injected at
// construction. Business logic never reads secrets from the environment.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// TokenManager issues and verifies the access/refresh token pair.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs a short-lived token embedding the user's
// identity fields.
func (m *TokenManager) IssueAccessToken(u *entity.User) (string, time.Time, error) {
	exp := time.Now().Add(m.accessTTL)
	claims := &Claims{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.accessSecret)
	return s, exp, err
}

// IssueRefreshToken signs a longer-lived token embedding only the
// user id.
func (m *TokenManager) IssueRefreshToken(u *entity.User) (string, time.Time, error) {
	exp := time.Now().Add(m.refreshTTL)
	claims := &Claims{
		UserID: u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti makes every rotation produce a distinct token even
			// within the same second
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.refreshSecret)
	return s, exp, err
}

// Parse verifies signature and expiry for the given kind. Expiry is
// reported distinctly from malformed or forged tokens.
func (m *TokenManager) Parse(tokenStr string, kind TokenKind) (*Claims, error) {
	secret := m.accessSecret
	if kind == RefreshToken {
		secret = m.refreshSecret
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ExpiredToken()
		}
		return nil, apperr.Wrap(apperr.KindInvalidToken, "invalid token", err)
	}
	if !tkn.Valid {
		return nil, apperr.InvalidToken("invalid token")
	}
	return claims, nil
}
