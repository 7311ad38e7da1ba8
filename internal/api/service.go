package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "toodo.v1.Toodo"

const (
	MethodRegister     = "Register"
	MethodLogin        = "Login"
	MethodRefreshToken = "RefreshToken"
	MethodLogout       = "Logout"
	MethodListTodos    = "ListTodos"
	MethodSaveTodo     = "SaveTodo"
	MethodDeleteTodo   = "DeleteTodo"
	MethodPing         = "Ping"
)

// FullMethod returns the method path as seen by interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ToodoServer is implemented by the server side of the service.
type ToodoServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	Logout(context.Context, *LogoutRequest) (*Empty, error)
	ListTodos(context.Context, *Empty) (*ListTodosResponse, error)
	SaveTodo(context.Context, *SaveTodoRequest) (*SaveTodoResponse, error)
	DeleteTodo(context.Context, *DeleteTodoRequest) (*Empty, error)
	Ping(context.Context, *Empty) (*PingResponse, error)
}

func unary[Req, Resp any](name string, call func(ToodoServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ToodoServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ToodoServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes toodo.v1.Toodo for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ToodoServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegister, ToodoServer.Register),
		unary(MethodLogin, ToodoServer.Login),
		unary(MethodRefreshToken, ToodoServer.RefreshToken),
		unary(MethodLogout, ToodoServer.Logout),
		unary(MethodListTodos, ToodoServer.ListTodos),
		unary(MethodSaveTodo, ToodoServer.SaveTodo),
		unary(MethodDeleteTodo, ToodoServer.DeleteTodo),
		unary(MethodPing, ToodoServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "toodo/v1/toodo",
}

func RegisterToodoServer(s grpc.ServiceRegistrar, srv ToodoServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ToodoClient is the client side of the service.
type ToodoClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error)
	ListTodos(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListTodosResponse, error)
	SaveTodo(ctx context.Context, in *SaveTodoRequest, opts ...grpc.CallOption) (*SaveTodoResponse, error)
	DeleteTodo(ctx context.Context, in *DeleteTodoRequest, opts ...grpc.CallOption) (*Empty, error)
	Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error)
}

type toodoClient struct {
	cc grpc.ClientConnInterface
}

func NewToodoClient(cc grpc.ClientConnInterface) ToodoClient {
	return &toodoClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *toodoClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *toodoClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *toodoClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *toodoClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodLogout, in, opts)
}

func (c *toodoClient) ListTodos(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListTodosResponse, error) {
	return invoke[ListTodosResponse](ctx, c.cc, MethodListTodos, in, opts)
}

func (c *toodoClient) SaveTodo(ctx context.Context, in *SaveTodoRequest, opts ...grpc.CallOption) (*SaveTodoResponse, error) {
	return invoke[SaveTodoResponse](ctx, c.cc, MethodSaveTodo, in, opts)
}

func (c *toodoClient) DeleteTodo(ctx context.Context, in *DeleteTodoRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteTodo, in, opts)
}

func (c *toodoClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}
