package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/okotkov/chatrelay/internal/config"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Pair is one access/refresh token issuance. The access token is short-lived
// and never persisted; the refresh token is stored on the user record until
// rotated or revoked.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service signs and verifies the paired tokens. Access and refresh tokens use
// distinct secrets; no revocation state lives here, the auth flows enforce it
// against the user's stored token list.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     time.Duration(cfg.AccessTokenTTLMinutes) * time.Minute,
		refreshTTL:    time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour,
	}
}

func (s *Service) GenerateTokens(userID uuid.UUID) (*Pair, error) {
	access, err := s.sign(userID, KindAccess, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := s.sign(userID, KindRefresh, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify accepts either token kind: the access secret is tried first, the
// refresh secret on failure. Callers cannot tell from the result which kind
// was presented; flows that must only accept access tokens use VerifyAccess.
func (s *Service) Verify(tokenString string) (uuid.UUID, error) {
	if userID, _, err := s.parse(tokenString, s.accessSecret); err == nil {
		return userID, nil
	}

	userID, _, err := s.parse(tokenString, s.refreshSecret)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// VerifyAccess only accepts a valid, unexpired access token. It is the strict
// check used when admitting websocket connections, so a refresh token can
// never open a session.
func (s *Service) VerifyAccess(tokenString string) (uuid.UUID, error) {
	userID, kind, err := s.parse(tokenString, s.accessSecret)
	if err != nil {
		return uuid.Nil, err
	}
	if kind != KindAccess {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func (s *Service) sign(userID uuid.UUID, kind string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"kind": kind,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Service) parse(tokenString string, secret []byte) (uuid.UUID, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	kind, _ := claims["kind"].(string)
	return userID, kind, nil
}
