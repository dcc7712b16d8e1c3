package service

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"

	"github.com/golang-jwt/jwt/v5"
)

const (
	activationCodeMin  = 1000
	activationCodeSpan = 9000
)

type activationClaims struct {
	User           entity.PendingUser `json:"user"`
	ActivationCode string             `json:"activationCode"`
	jwt.RegisteredClaims
}

type ActivationTicketCodec interface {
	Issue(pending *entity.PendingUser) (*dto.ActivationTicket, error)
	Redeem(token, code string) (*entity.PendingUser, error)
}

type ActivationTicketCodecOption func(*activationTicketCodec)

type activationTicketCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	code   func() (string, error)
}

func NewActivationTicketCodec(secret string, ttl time.Duration, opts ...ActivationTicketCodecOption) ActivationTicketCodec {
	c := &activationTicketCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		code:   generateActivationCode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithActivationClock overrides the clock used to stamp and check tickets.
func WithActivationClock(now func() time.Time) ActivationTicketCodecOption {
	return func(c *activationTicketCodec) {
		if now != nil {
			c.now = now
		}
	}
}

func WithActivationCodeGenerator(gen func() (string, error)) ActivationTicketCodecOption {
	return func(c *activationTicketCodec) {
		if gen != nil {
			c.code = gen
		}
	}
}

func (c *activationTicketCodec) Issue(pending *entity.PendingUser) (*dto.ActivationTicket, error) {
	code, err := c.code()
	if err != nil {
		return nil, fmt.Errorf("generate activation code: %w", err)
	}

	issuedAt := c.now()
	expiresAt := issuedAt.Add(c.ttl)
	claims := &activationClaims{
		User:           *pending,
		ActivationCode: code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, err
	}

	return &dto.ActivationTicket{
		Token:     token,
		Code:      code,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (c *activationTicketCodec) Redeem(token, code string) (*entity.PendingUser, error) {
	claims := &activationClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, c.keyFunc,
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidActivationTicket
	}

	if subtle.ConstantTimeCompare([]byte(claims.ActivationCode), []byte(code)) != 1 {
		return nil, ErrActivationCodeMismatch
	}

	pending := claims.User
	return &pending, nil
}

func (c *activationTicketCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return c.secret, nil
}

func generateActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(activationCodeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(activationCodeMin+n.Int64(), 10), nil
}
