package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/types"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type userIDKey struct{}
type userKey struct{}

type sessionAuthorizer interface {
	Authorize(ctx context.Context, accessToken, refreshToken string) (*dto.GuardResult, error)
}

// GuardUnaryInterceptor runs the session guard for the listed methods. Renewed
// tokens are sent back in the response header metadata.
func GuardUnaryInterceptor(guard sessionAuthorizer, protectedMethods ...string) gogrpc.UnaryServerInterceptor {
	protected := make(map[string]struct{}, len(protectedMethods))
	for _, method := range protectedMethods {
		protected[method] = struct{}{}
	}

	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		if _, ok := protected[info.FullMethod]; !ok {
			return handler(ctx, req)
		}

		result, err := guard.Authorize(ctx,
			incomingMetadata(ctx, types.AccessTokenHeader),
			incomingMetadata(ctx, types.RefreshTokenHeader),
		)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				return nil, status.Error(codes.Unauthenticated, service.ErrUnauthenticated.Error())
			}
			logrus.WithError(err).WithField("method", info.FullMethod).Error("Session guard failed (grpc)")
			return nil, status.Error(codes.Internal, "internal server error")
		}

		if result.Renewed() {
			header := metadata.Pairs(
				types.AccessTokenHeader, result.RenewedTokens.AccessToken,
				types.RefreshTokenHeader, result.RenewedTokens.RefreshToken,
			)
			if err = gogrpc.SetHeader(ctx, header); err != nil {
				logrus.WithError(err).Warn("Failed to attach renewed tokens (grpc)")
			}
		}

		ctx = context.WithValue(ctx, userIDKey{}, result.UserID)
		if result.User != nil {
			ctx = context.WithValue(ctx, userKey{}, result.User)
		}
		return handler(ctx, req)
	}
}

func UserIDFromContext(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(userIDKey{}).(uint64)
	return id, ok
}

func UserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(userKey{}).(*entity.User)
	return user, ok
}

func incomingMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
