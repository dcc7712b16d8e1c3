package service_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/service"

	"github.com/golang-jwt/jwt/v5"
)

func newPendingUser() *entity.PendingUser {
	return &entity.PendingUser{
		Name:         "Ana",
		Email:        "ana@x.com",
		PasswordHash: "$2a$04$hash",
		PhoneNumber:  "5551234",
	}
}

func TestActivationTicketCodec_RoundTrip(t *testing.T) {
	codec := service.NewActivationTicketCodec("activation-secret", 5*time.Minute)
	pending := newPendingUser()

	ticket, err := codec.Issue(pending)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if ticket.Token == "" {
		t.Fatalf("expected token")
	}
	if got := ticket.ExpiresAt.Sub(ticket.IssuedAt); got != 5*time.Minute {
		t.Fatalf("expected 5m lifetime, got %v", got)
	}

	redeemed, err := codec.Redeem(ticket.Token, ticket.Code)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if *redeemed != *pending {
		t.Fatalf("expected %#v, got %#v", pending, redeemed)
	}
}

func TestActivationTicketCodec_CodeIsFourDigits(t *testing.T) {
	codec := service.NewActivationTicketCodec("activation-secret", 5*time.Minute)

	for i := 0; i < 200; i++ {
		ticket, err := codec.Issue(newPendingUser())
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		n, err := strconv.Atoi(ticket.Code)
		if err != nil || len(ticket.Code) != 4 || n < 1000 || n > 9999 {
			t.Fatalf("unexpected activation code %q", ticket.Code)
		}
	}
}

func TestActivationTicketCodec_WrongCode(t *testing.T) {
	codec := service.NewActivationTicketCodec("activation-secret", 5*time.Minute,
		service.WithActivationCodeGenerator(func() (string, error) { return "4321", nil }),
	)

	ticket, err := codec.Issue(newPendingUser())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = codec.Redeem(ticket.Token, "1234")
	if !errors.Is(err, service.ErrActivationCodeMismatch) {
		t.Fatalf("expected ErrActivationCodeMismatch, got %v", err)
	}
}

func TestActivationTicketCodec_Expired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	codec := service.NewActivationTicketCodec("activation-secret", 5*time.Minute,
		service.WithActivationClock(func() time.Time { return clock() }),
	)

	ticket, err := codec.Issue(newPendingUser())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	clock = func() time.Time { return now.Add(5*time.Minute + time.Second) }
	_, err = codec.Redeem(ticket.Token, ticket.Code)
	if !errors.Is(err, service.ErrInvalidActivationTicket) {
		t.Fatalf("expected ErrInvalidActivationTicket, got %v", err)
	}
}

func TestActivationTicketCodec_Tampered(t *testing.T) {
	codec := service.NewActivationTicketCodec("activation-secret", 5*time.Minute)

	ticket, err := codec.Issue(newPendingUser())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	parts := strings.Split(ticket.Token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected compact JWT, got %q", ticket.Token)
	}

	tampered := []string{
		parts[0] + "." + flipChar(parts[1]) + "." + parts[2],
		parts[0] + "." + parts[1] + "." + flipChar(parts[2]),
	}
	for _, token := range tampered {
		if _, err := codec.Redeem(token, ticket.Code); !errors.Is(err, service.ErrInvalidActivationTicket) {
			t.Fatalf("expected ErrInvalidActivationTicket, got %v", err)
		}
	}
}

func TestActivationTicketCodec_RejectsOtherSecret(t *testing.T) {
	issuer := service.NewActivationTicketCodec("activation-secret", 5*time.Minute)
	other := service.NewActivationTicketCodec("access-secret", 5*time.Minute)

	ticket, err := issuer.Issue(newPendingUser())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := other.Redeem(ticket.Token, ticket.Code); !errors.Is(err, service.ErrInvalidActivationTicket) {
		t.Fatalf("expected ErrInvalidActivationTicket, got %v", err)
	}
}

func TestActivationTicketCodec_RejectsUnsignedToken(t *testing.T) {
	codec := service.NewActivationTicketCodec("activation-secret", 5*time.Minute)

	claims := jwt.MapClaims{
		"user":           map[string]any{"email": "ana@x.com"},
		"activationCode": "1234",
		"exp":            time.Now().Add(time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := codec.Redeem(token, "1234"); !errors.Is(err, service.ErrInvalidActivationTicket) {
		t.Fatalf("expected ErrInvalidActivationTicket, got %v", err)
	}
}

// flipChar changes the first character of a base64url segment.
func flipChar(segment string) string {
	if segment == "" {
		return "A"
	}
	replacement := byte('A')
	if segment[0] == 'A' {
		replacement = 'B'
	}
	return string(replacement) + segment[1:]
}
