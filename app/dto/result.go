package dto

import (
	"time"

	"github.com/vibast-solutions/ms-go-users/app/entity"
)

// ActivationTicket is the signed registration ticket together with the code
// embedded in it. Only Token is ever handed to clients.
type ActivationTicket struct {
	Token     string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type RegisterResult struct {
	ActivationToken string
	ExpiresAt       time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type LoginResult struct {
	User   *entity.User
	Tokens *TokenPair
}

// GuardResult describes an authorized request. User and RenewedTokens are only
// set when the access token had to be renewed from the refresh token.
type GuardResult struct {
	UserID        uint64
	User          *entity.User
	RenewedTokens *TokenPair
}

func (r *GuardResult) Renewed() bool {
	return r != nil && r.RenewedTokens != nil
}

// Mail is an outbound templated message handed to the notifier.
type Mail struct {
	Recipient string         `json:"recipient"`
	Subject   string         `json:"subject"`
	Template  string         `json:"template"`
	Context   map[string]any `json:"context"`
}
