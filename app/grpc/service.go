package grpc

import (
	"context"

	httpdto "github.com/vibast-solutions/ms-go-users/app/dto/http"
	"github.com/vibast-solutions/ms-go-users/app/types"

	gogrpc "google.golang.org/grpc"
)

const ServiceName = "users.v1.UsersService"

const (
	MethodRegister  = "/" + ServiceName + "/Register"
	MethodActivate  = "/" + ServiceName + "/Activate"
	MethodLogin     = "/" + ServiceName + "/Login"
	MethodMe        = "/" + ServiceName + "/Me"
	MethodLogout    = "/" + ServiceName + "/Logout"
	MethodListUsers = "/" + ServiceName + "/ListUsers"
)

type Empty struct{}

type UsersServiceServer interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*httpdto.RegisterResponse, error)
	Activate(ctx context.Context, req *types.ActivateRequest) (*httpdto.ActivateResponse, error)
	Login(ctx context.Context, req *types.LoginRequest) (*httpdto.LoginResponse, error)
	Me(ctx context.Context, req *Empty) (*httpdto.UserResponse, error)
	Logout(ctx context.Context, req *Empty) (*httpdto.LogoutResponse, error)
	ListUsers(ctx context.Context, req *Empty) (*httpdto.ListUsersResponse, error)
}

func RegisterUsersServiceServer(s gogrpc.ServiceRegistrar, srv UsersServiceServer) {
	s.RegisterService(&UsersServiceDesc, srv)
}

var UsersServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UsersServiceServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{
			MethodName: "Register",
			Handler: unaryHandler(MethodRegister, func(s UsersServiceServer, ctx context.Context, req *types.RegisterRequest) (*httpdto.RegisterResponse, error) {
				return s.Register(ctx, req)
			}),
		},
		{
			MethodName: "Activate",
			Handler: unaryHandler(MethodActivate, func(s UsersServiceServer, ctx context.Context, req *types.ActivateRequest) (*httpdto.ActivateResponse, error) {
				return s.Activate(ctx, req)
			}),
		},
		{
			MethodName: "Login",
			Handler: unaryHandler(MethodLogin, func(s UsersServiceServer, ctx context.Context, req *types.LoginRequest) (*httpdto.LoginResponse, error) {
				return s.Login(ctx, req)
			}),
		},
		{
			MethodName: "Me",
			Handler: unaryHandler(MethodMe, func(s UsersServiceServer, ctx context.Context, req *Empty) (*httpdto.UserResponse, error) {
				return s.Me(ctx, req)
			}),
		},
		{
			MethodName: "Logout",
			Handler: unaryHandler(MethodLogout, func(s UsersServiceServer, ctx context.Context, req *Empty) (*httpdto.LogoutResponse, error) {
				return s.Logout(ctx, req)
			}),
		},
		{
			MethodName: "ListUsers",
			Handler: unaryHandler(MethodListUsers, func(s UsersServiceServer, ctx context.Context, req *Empty) (*httpdto.ListUsersResponse, error) {
				return s.ListUsers(ctx, req)
			}),
		},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "users/v1/users.proto",
}

func unaryHandler[Req, Res any](fullMethod string, call func(UsersServiceServer, context.Context, *Req) (*Res, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(UsersServiceServer), ctx, in)
		}
		info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(UsersServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// UsersServiceClient calls UsersService with the JSON codec.
type UsersServiceClient struct {
	cc gogrpc.ClientConnInterface
}

func NewUsersServiceClient(cc gogrpc.ClientConnInterface) *UsersServiceClient {
	return &UsersServiceClient{cc: cc}
}

func (c *UsersServiceClient) Register(ctx context.Context, req *types.RegisterRequest, opts ...gogrpc.CallOption) (*httpdto.RegisterResponse, error) {
	out := new(httpdto.RegisterResponse)
	if err := c.invoke(ctx, MethodRegister, req, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UsersServiceClient) Activate(ctx context.Context, req *types.ActivateRequest, opts ...gogrpc.CallOption) (*httpdto.ActivateResponse, error) {
	out := new(httpdto.ActivateResponse)
	if err := c.invoke(ctx, MethodActivate, req, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UsersServiceClient) Login(ctx context.Context, req *types.LoginRequest, opts ...gogrpc.CallOption) (*httpdto.LoginResponse, error) {
	out := new(httpdto.LoginResponse)
	if err := c.invoke(ctx, MethodLogin, req, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UsersServiceClient) Me(ctx context.Context, opts ...gogrpc.CallOption) (*httpdto.UserResponse, error) {
	out := new(httpdto.UserResponse)
	if err := c.invoke(ctx, MethodMe, &Empty{}, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UsersServiceClient) Logout(ctx context.Context, opts ...gogrpc.CallOption) (*httpdto.LogoutResponse, error) {
	out := new(httpdto.LogoutResponse)
	if err := c.invoke(ctx, MethodLogout, &Empty{}, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UsersServiceClient) ListUsers(ctx context.Context, opts ...gogrpc.CallOption) (*httpdto.ListUsersResponse, error) {
	out := new(httpdto.ListUsersResponse)
	if err := c.invoke(ctx, MethodListUsers, &Empty{}, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UsersServiceClient) invoke(ctx context.Context, method string, in, out any, opts []gogrpc.CallOption) error {
	opts = append([]gogrpc.CallOption{gogrpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}
