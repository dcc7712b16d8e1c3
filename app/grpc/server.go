package grpc

import (
	"context"
	"errors"

	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/types"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type UsersServer struct {
	userAuthService service.UserAuthService
}

func NewUsersServer(userAuthService service.UserAuthService) *UsersServer {
	return &UsersServer{userAuthService: userAuthService}
}

func (s *UsersServer) Register(ctx context.Context, req *types.RegisterRequest) (*httpdto.RegisterResponse, error) {
	if err := req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Register validation failed (grpc)")
		return nil, invalidArgument(err)
	}

	logrus.WithField("email", req.Email).Info("Register request received (grpc)")
	res, err := s.userAuthService.Register(ctx, req)
	if err != nil {
		return nil, statusError(err, logrus.Fields{"operation": "register", "email": req.Email})
	}

	return &httpdto.RegisterResponse{
		ActivationToken: res.ActivationToken,
		ExpiresAt:       res.ExpiresAt,
		Message:         "Please check your email to activate your account!",
	}, nil
}

func (s *UsersServer) Activate(ctx context.Context, req *types.ActivateRequest) (*httpdto.ActivateResponse, error) {
	if err := req.Validate(); err != nil {
		logrus.Debug("Activate validation failed (grpc)")
		return nil, invalidArgument(err)
	}

	user, err := s.userAuthService.Activate(ctx, req)
	if err != nil {
		return nil, statusError(err, logrus.Fields{"operation": "activate"})
	}

	logrus.WithField("user_id", user.ID).Info("User activated (grpc)")
	return &httpdto.ActivateResponse{
		User:    httpdto.NewUserResponse(user),
		Message: "account activated",
	}, nil
}

func (s *UsersServer) Login(ctx context.Context, req *types.LoginRequest) (*httpdto.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed (grpc)")
		return nil, invalidArgument(err)
	}

	res, err := s.userAuthService.Login(ctx, req)
	if err != nil {
		return nil, statusError(err, logrus.Fields{"operation": "login", "email": req.Email})
	}

	logrus.WithField("user_id", res.User.ID).Info("Login successful (grpc)")
	return &httpdto.LoginResponse{
		User:         httpdto.NewUserResponse(res.User),
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		ExpiresIn:    res.Tokens.ExpiresIn,
	}, nil
}

func (s *UsersServer) Me(ctx context.Context, _ *Empty) (*httpdto.UserResponse, error) {
	if user, ok := UserFromContext(ctx); ok {
		return httpdto.NewUserResponse(user), nil
	}

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, service.ErrUnauthenticated.Error())
	}

	user, err := s.userAuthService.GetUser(ctx, userID)
	if err != nil {
		return nil, statusError(err, logrus.Fields{"operation": "me", "user_id": userID})
	}
	return httpdto.NewUserResponse(user), nil
}

// Logout has no server-side state to drop. Clients discard both tokens.
func (s *UsersServer) Logout(ctx context.Context, _ *Empty) (*httpdto.LogoutResponse, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, service.ErrUnauthenticated.Error())
	}
	logrus.WithField("user_id", userID).Info("Logout successful (grpc)")
	return &httpdto.LogoutResponse{Message: "Logged out successfully!"}, nil
}

func (s *UsersServer) ListUsers(ctx context.Context, _ *Empty) (*httpdto.ListUsersResponse, error) {
	users, err := s.userAuthService.ListUsers(ctx)
	if err != nil {
		return nil, statusError(err, logrus.Fields{"operation": "list_users"})
	}
	return httpdto.NewListUsersResponse(users), nil
}

func invalidArgument(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

func statusError(err error, fields logrus.Fields) error {
	code, message := codeFor(err)
	entry := logrus.WithFields(fields).WithError(err)
	if code == codes.Internal {
		entry.Error("Request failed (grpc)")
	} else {
		entry.Warn("Request rejected (grpc)")
	}
	return status.Error(code, message)
}

func codeFor(err error) (codes.Code, string) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		return codes.AlreadyExists, service.ErrDuplicateEmail.Error()
	case errors.Is(err, service.ErrDuplicatePhone):
		return codes.AlreadyExists, service.ErrDuplicatePhone.Error()
	case errors.Is(err, service.ErrWeakPassword):
		return codes.InvalidArgument, err.Error()
	case errors.Is(err, service.ErrActivationCodeMismatch):
		return codes.InvalidArgument, service.ErrActivationCodeMismatch.Error()
	case errors.Is(err, service.ErrInvalidActivationTicket):
		return codes.InvalidArgument, service.ErrInvalidActivationTicket.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return codes.Unauthenticated, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		return codes.Unauthenticated, service.ErrUnauthenticated.Error()
	case errors.Is(err, service.ErrUserNotFound):
		return codes.NotFound, service.ErrUserNotFound.Error()
	default:
		return codes.Internal, "internal server error"
	}
}
