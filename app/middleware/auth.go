package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	ContextUserID = "user_id"
	ContextUser   = "user"
)

type sessionAuthorizer interface {
	Authorize(ctx context.Context, accessToken, refreshToken string) (*dto.GuardResult, error)
}

type AuthMiddlewareOption func(*AuthMiddleware)

type AuthMiddleware struct {
	guard         sessionAuthorizer
	secureCookies bool
}

func NewAuthMiddleware(guard sessionAuthorizer, opts ...AuthMiddlewareOption) *AuthMiddleware {
	m := &AuthMiddleware{guard: guard}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func WithSecureCookies(secure bool) AuthMiddlewareOption {
	return func(m *AuthMiddleware) {
		m.secureCookies = secure
	}
}

// RequireAuth reads both tokens from the request headers, falling back to
// cookies, and rejects the request before next runs when they do not
// authorize it. Renewed tokens are written to the response headers and
// cookies.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessToken := tokenFromRequest(c, types.AccessTokenHeader)
		refreshToken := tokenFromRequest(c, types.RefreshTokenHeader)

		result, err := m.guard.Authorize(c.Request().Context(), accessToken, refreshToken)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				logrus.Debug("Request rejected by session guard")
				return c.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: service.ErrUnauthenticated.Error()})
			}
			logrus.WithError(err).Error("Session guard failed")
			return c.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
		}

		if result.Renewed() {
			logrus.WithField("user_id", result.UserID).Debug("Access token renewed from refresh token")
			m.SetTokenCookies(c, result.RenewedTokens)
			c.Response().Header().Set(types.AccessTokenHeader, result.RenewedTokens.AccessToken)
			c.Response().Header().Set(types.RefreshTokenHeader, result.RenewedTokens.RefreshToken)
		}

		c.Set(ContextUserID, result.UserID)
		if result.User != nil {
			c.Set(ContextUser, result.User)
		}

		return next(c)
	}
}

func (m *AuthMiddleware) SetTokenCookies(c echo.Context, tokens *dto.TokenPair) {
	c.SetCookie(m.tokenCookie(types.AccessTokenHeader, tokens.AccessToken, 0))
	c.SetCookie(m.tokenCookie(types.RefreshTokenHeader, tokens.RefreshToken, 0))
}

// ClearTokenCookies expires both token cookies on the client.
func (m *AuthMiddleware) ClearTokenCookies(c echo.Context) {
	c.SetCookie(m.tokenCookie(types.AccessTokenHeader, "", -1))
	c.SetCookie(m.tokenCookie(types.RefreshTokenHeader, "", -1))
}

func (m *AuthMiddleware) tokenCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func tokenFromRequest(c echo.Context, name string) string {
	if value := c.Request().Header.Get(name); value != "" {
		return value
	}
	if cookie, err := c.Cookie(name); err == nil {
		return cookie.Value
	}
	return ""
}
