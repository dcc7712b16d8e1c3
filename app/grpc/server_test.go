package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-users/app/dto"
	"github.com/vibast-solutions/ms-go-users/app/entity"
	usersgrpc "github.com/vibast-solutions/ms-go-users/app/grpc"
	"github.com/vibast-solutions/ms-go-users/app/service"
	"github.com/vibast-solutions/ms-go-users/app/types"
	"github.com/vibast-solutions/ms-go-users/config"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubUserAuthService struct {
	loginResult *dto.LoginResult
	err         error
}

func (s *stubUserAuthService) Register(context.Context, *types.RegisterRequest) (*dto.RegisterResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.RegisterResult{ActivationToken: "ticket", ExpiresAt: time.Now().Add(5 * time.Minute)}, nil
}

func (s *stubUserAuthService) Activate(context.Context, *types.ActivateRequest) (*entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return anaUser(), nil
}

func (s *stubUserAuthService) Login(context.Context, *types.LoginRequest) (*dto.LoginResult, error) {
	return s.loginResult, s.err
}

func (s *stubUserAuthService) GetUser(_ context.Context, id uint64) (*entity.User, error) {
	if id != 42 {
		return nil, service.ErrUserNotFound
	}
	return anaUser(), nil
}

func (s *stubUserAuthService) ListUsers(context.Context) ([]*entity.User, error) {
	return []*entity.User{anaUser()}, nil
}

type stubUsers struct{}

func (stubUsers) FindByID(_ context.Context, id uint64) (*entity.User, error) {
	if id != 42 {
		return nil, nil
	}
	return anaUser(), nil
}

func anaUser() *entity.User {
	return &entity.User{ID: 42, Name: "Ana", Email: "ana@x.com", PhoneNumber: "5551234"}
}

type testEnv struct {
	client *usersgrpc.UsersServiceClient
	issuer service.SessionTokenIssuer
	svc    *stubUserAuthService
	now    *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	now := time.Now()
	issuer := service.NewSessionTokenIssuer(config.JWTConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}, service.WithTokenClock(func() time.Time { return now }))
	svc := &stubUserAuthService{}

	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer(grpc.UnaryInterceptor(
		usersgrpc.GuardUnaryInterceptor(service.NewSessionGuard(issuer, stubUsers{}), usersgrpc.MethodMe, usersgrpc.MethodLogout),
	))
	usersgrpc.RegisterUsersServiceServer(server, usersgrpc.NewUsersServer(svc))
	go func() { _ = server.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
	})

	return &testEnv{
		client: usersgrpc.NewUsersServiceClient(conn),
		issuer: issuer,
		svc:    svc,
		now:    &now,
	}
}

func withTokens(ctx context.Context, access, refresh string) context.Context {
	return metadata.AppendToOutgoingContext(ctx,
		types.AccessTokenHeader, access,
		types.RefreshTokenHeader, refresh,
	)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.client.Register(context.Background(), &types.RegisterRequest{
		Name:        "Ana",
		Email:       "ana@x.com",
		Password:    "password1",
		PhoneNumber: "5551234",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if res.ActivationToken != "ticket" {
		t.Fatalf("unexpected response: %#v", res)
	}
}

func TestRegister_InvalidArgument(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Register(context.Background(), &types.RegisterRequest{Email: "nope"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.svc.err = service.ErrDuplicatePhone

	_, err := env.client.Register(context.Background(), &types.RegisterRequest{
		Name:        "Ana",
		Email:       "ana@x.com",
		Password:    "password1",
		PhoneNumber: "5551234",
	})
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected already exists, got %v", err)
	}
	if status.Convert(err).Message() != service.ErrDuplicatePhone.Error() {
		t.Fatalf("unexpected message %q", status.Convert(err).Message())
	}
}

func TestActivate_CodeMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.svc.err = service.ErrActivationCodeMismatch

	_, err := env.client.Activate(context.Background(), &types.ActivateRequest{ActivationToken: "ticket", ActivationCode: "1234"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.svc.loginResult = &dto.LoginResult{
		User:   anaUser(),
		Tokens: &dto.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900},
	}

	res, err := env.client.Login(context.Background(), &types.LoginRequest{Email: "ana@x.com", Password: "password1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.AccessToken != "access" || res.User == nil || res.User.ID != 42 {
		t.Fatalf("unexpected response: %#v", res)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.svc.err = service.ErrInvalidCredentials

	_, err := env.client.Login(context.Background(), &types.LoginRequest{Email: "ana@x.com", Password: "password2"})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestMe_RequiresTokens(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Me(context.Background())
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestMe_ValidAccessToken(t *testing.T) {
	env := newTestEnv(t)
	pair, _ := env.issuer.Issue(42)

	var header metadata.MD
	res, err := env.client.Me(withTokens(context.Background(), pair.AccessToken, pair.RefreshToken), grpc.Header(&header))
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if res.Email != "ana@x.com" {
		t.Fatalf("unexpected user: %#v", res)
	}
	if len(header.Get(types.AccessTokenHeader)) != 0 {
		t.Fatalf("expected no renewed tokens")
	}
}

func TestMe_RenewsExpiredAccessToken(t *testing.T) {
	env := newTestEnv(t)
	pair, _ := env.issuer.Issue(42)
	*env.now = env.now.Add(time.Hour)

	var header metadata.MD
	res, err := env.client.Me(withTokens(context.Background(), pair.AccessToken, pair.RefreshToken), grpc.Header(&header))
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if res.ID != 42 {
		t.Fatalf("unexpected user: %#v", res)
	}

	renewed := header.Get(types.AccessTokenHeader)
	if len(renewed) != 1 {
		t.Fatalf("expected renewed access token in header, got %v", header)
	}
	if subject, err := env.issuer.VerifyAccess(renewed[0]); err != nil || subject != 42 {
		t.Fatalf("expected renewed token for 42, got %d (%v)", subject, err)
	}
	if len(header.Get(types.RefreshTokenHeader)) != 1 {
		t.Fatalf("expected renewed refresh token in header, got %v", header)
	}
}

func TestLogout_RequiresTokens(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Logout(context.Background())
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	pair, _ := env.issuer.Issue(42)

	res, err := env.client.Logout(withTokens(context.Background(), pair.AccessToken, pair.RefreshToken))
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if res.Message == "" {
		t.Fatalf("expected logout message")
	}
}

func TestListUsers_IsOpen(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(res.Users) != 1 {
		t.Fatalf("unexpected users: %#v", res.Users)
	}
}
