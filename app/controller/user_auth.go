package controller

import (
	"net/http"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"
	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/middleware"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type tokenCookieWriter interface {
	SetTokenCookies(c echo.Context, tokens *dto.TokenPair)
	ClearTokenCookies(c echo.Context)
}

type UserAuthController struct {
	userAuthService service.UserAuthService
	cookies         tokenCookieWriter
}

func NewUserAuthController(userAuthService service.UserAuthService, cookies tokenCookieWriter) *UserAuthController {
	return &UserAuthController{
		userAuthService: userAuthService,
		cookies:         cookies,
	}
}

func (c *UserAuthController) Register(ctx echo.Context) error {
	req, err := types.NewRegisterRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind register request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Register validation failed")
		return validationError(ctx, err)
	}

	logrus.WithField("email", req.Email).Info("Register request received")
	result, err := c.userAuthService.Register(ctx.Request().Context(), req)
	if err != nil {
		return serviceError(ctx, err, logrus.Fields{"operation": "register", "email": req.Email})
	}

	logrus.WithField("email", req.Email).Info("Activation mail queued")
	return ctx.JSON(http.StatusCreated, httpdto.RegisterResponse{
		ActivationToken: result.ActivationToken,
		ExpiresAt:       result.ExpiresAt,
		Message:         "Please check your email to activate your account!",
	})
}

func (c *UserAuthController) Activate(ctx echo.Context) error {
	req, err := types.NewActivateRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind activate request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Activate validation failed")
		return validationError(ctx, err)
	}

	user, err := c.userAuthService.Activate(ctx.Request().Context(), req)
	if err != nil {
		return serviceError(ctx, err, logrus.Fields{"operation": "activate"})
	}

	logrus.WithField("user_id", user.ID).Info("User activated")
	return ctx.JSON(http.StatusCreated, httpdto.ActivateResponse{
		User:    httpdto.NewUserResponse(user),
		Message: "account activated",
	})
}

func (c *UserAuthController) Login(ctx echo.Context) error {
	req, err := types.NewLoginRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed")
		return validationError(ctx, err)
	}

	logrus.WithField("email", req.Email).Info("Login request received")
	result, err := c.userAuthService.Login(ctx.Request().Context(), req)
	if err != nil {
		return serviceError(ctx, err, logrus.Fields{"operation": "login", "email": req.Email})
	}

	c.cookies.SetTokenCookies(ctx, result.Tokens)
	logrus.WithField("user_id", result.User.ID).Info("Login successful")
	return ctx.JSON(http.StatusOK, httpdto.LoginResponse{
		User:         httpdto.NewUserResponse(result.User),
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresIn:    result.Tokens.ExpiresIn,
	})
}

// Me returns the authenticated user. The guard already resolved the user
// when it renewed the tokens, otherwise it is loaded by id.
func (c *UserAuthController) Me(ctx echo.Context) error {
	if user, ok := ctx.Get(middleware.ContextUser).(*entity.User); ok {
		return ctx.JSON(http.StatusOK, httpdto.NewUserResponse(user))
	}

	userID, ok := ctx.Get(middleware.ContextUserID).(uint64)
	if !ok {
		logrus.Warn("Me failed: missing user_id in context")
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: service.ErrUnauthenticated.Error()})
	}

	user, err := c.userAuthService.GetUser(ctx.Request().Context(), userID)
	if err != nil {
		return serviceError(ctx, err, logrus.Fields{"operation": "me", "user_id": userID})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewUserResponse(user))
}

// Logout only clears the token cookies. Issued tokens stay valid until they
// expire.
func (c *UserAuthController) Logout(ctx echo.Context) error {
	c.cookies.ClearTokenCookies(ctx)
	logrus.WithField("user_id", ctx.Get(middleware.ContextUserID)).Info("Logout successful")
	return ctx.JSON(http.StatusOK, httpdto.LogoutResponse{Message: "Logged out successfully!"})
}

func (c *UserAuthController) ListUsers(ctx echo.Context) error {
	users, err := c.userAuthService.ListUsers(ctx.Request().Context())
	if err != nil {
		return serviceError(ctx, err, logrus.Fields{"operation": "list_users"})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewListUsersResponse(users))
}
