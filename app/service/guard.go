package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"

	"github.com/sirupsen/logrus"
)

type userFinder interface {
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
}

// SessionGuard authorizes a request from its access and refresh tokens.
// A rejected access token falls back to the refresh token, in which case a
// fresh pair is minted and returned in GuardResult.RenewedTokens.
type SessionGuard interface {
	Authorize(ctx context.Context, accessToken, refreshToken string) (*dto.GuardResult, error)
}

type sessionGuard struct {
	tokens SessionTokenIssuer
	users  userFinder
}

func NewSessionGuard(tokens SessionTokenIssuer, users userFinder) SessionGuard {
	return &sessionGuard{
		tokens: tokens,
		users:  users,
	}
}

func (g *sessionGuard) Authorize(ctx context.Context, accessToken, refreshToken string) (*dto.GuardResult, error) {
	accessToken = strings.TrimSpace(accessToken)
	refreshToken = strings.TrimSpace(refreshToken)
	if accessToken == "" || refreshToken == "" {
		return nil, ErrUnauthenticated
	}

	userID, err := g.tokens.VerifyAccess(accessToken)
	if err == nil {
		return &dto.GuardResult{UserID: userID}, nil
	}
	logrus.WithError(err).Debug("access token rejected, trying refresh token")

	userID, err = g.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	renewed, err := g.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.GuardResult{
		UserID:        user.ID,
		User:          user,
		RenewedTokens: renewed,
	}, nil
}
