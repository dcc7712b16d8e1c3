package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are carried by both access and refresh tokens. The two classes only
// differ by the secret and lifetime used to sign them.
type Claims struct {
	UserID uint64 `json:"id"`
	jwt.RegisteredClaims
}

type SessionTokenIssuer interface {
	Issue(userID uint64) (*dto.TokenPair, error)
	VerifyAccess(token string) (uint64, error)
	VerifyRefresh(token string) (uint64, error)
}

type SessionTokenIssuerOption func(*sessionTokenIssuer)

type sessionTokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewSessionTokenIssuer(cfg config.JWTConfig, opts ...SessionTokenIssuerOption) SessionTokenIssuer {
	s := &sessionTokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithTokenClock(now func() time.Time) SessionTokenIssuerOption {
	return func(s *sessionTokenIssuer) {
		if now != nil {
			s.now = now
		}
	}
}

func (s *sessionTokenIssuer) Issue(userID uint64) (*dto.TokenPair, error) {
	accessToken, err := s.sign(userID, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.sign(userID, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *sessionTokenIssuer) VerifyAccess(token string) (uint64, error) {
	return s.verify(token, s.accessSecret)
}

func (s *sessionTokenIssuer) VerifyRefresh(token string) (uint64, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *sessionTokenIssuer) sign(userID uint64, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *sessionTokenIssuer) verify(tokenString string, secret []byte) (uint64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrInvalidToken
	}

	if !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
