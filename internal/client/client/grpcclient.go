// Package client is the gRPC client of the toodo service. It keeps the
// session's token pair in memory and rotates it transparently when the
// access token is rejected.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sameershelar/toodo/internal/api"
	"github.com/sameershelar/toodo/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var publicMethods = map[string]bool{
	api.FullMethod(api.MethodRegister):     true,
	api.FullMethod(api.MethodLogin):        true,
	api.FullMethod(api.MethodRefreshToken): true,
	api.FullMethod(api.MethodLogout):       true,
	api.FullMethod(api.MethodPing):         true,
}

type GRPCClient struct {
	conn   *grpc.ClientConn
	client api.ToodoClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewGRPCClient connects to target. Extra dial options are appended after
// the defaults (insecure transport and the token interceptor).
func NewGRPCClient(target string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{}
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewToodoClient(conn)
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *GRPCClient) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken, c.refreshToken = access, refresh
}

// LoggedIn reports whether the client holds a session.
func (c *GRPCClient) LoggedIn() bool {
	_, refresh := c.tokens()
	return refresh != ""
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the access token to protected calls. When
// the server answers Unauthenticated it rotates the pair once and retries.
func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if publicMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, _ := c.tokens()
	if access == "" {
		return ErrNotLoggedIn
	}

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated {
		return err
	}

	fresh, err := c.rotate(ctx, access)
	if err != nil {
		return err
	}
	return invoker(withAccessToken(ctx, fresh), method, req, reply, cc, opts...)
}

// rotate exchanges the refresh token for a new pair, unless another call
// already did so after stale was sent.
func (c *GRPCClient) rotate(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != stale && c.accessToken != "" {
		return c.accessToken, nil
	}
	if c.refreshToken == "" {
		return "", ErrNotLoggedIn
	}

	resp, err := c.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: c.refreshToken})
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			c.accessToken, c.refreshToken = "", ""
			return "", fmt.Errorf("%w: session expired, please log in again", ErrUnauthorized)
		}
		return "", mapError(err)
	}
	c.accessToken, c.refreshToken = resp.AccessToken, resp.RefreshToken
	return c.accessToken, nil
}

func (c *GRPCClient) Register(ctx context.Context, email, password string) (string, error) {
	resp, err := c.client.Register(ctx, &api.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return "", mapError(err)
	}
	return resp.ID, nil
}

func (c *GRPCClient) Login(ctx context.Context, email, password string) error {
	resp, err := c.client.Login(ctx, &api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return mapError(err)
	}
	c.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Logout revokes the refresh token on the server and forgets the session.
// The local session is dropped even if the server call fails.
func (c *GRPCClient) Logout(ctx context.Context) error {
	_, refresh := c.tokens()
	c.setTokens("", "")
	if refresh == "" {
		return nil
	}
	if _, err := c.client.Logout(ctx, &api.LogoutRequest{RefreshToken: refresh}); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *GRPCClient) ListTodos(ctx context.Context) ([]*api.Todo, error) {
	resp, err := c.client.ListTodos(ctx, &api.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Todos, nil
}

func (c *GRPCClient) SaveTodo(ctx context.Context, t *api.Todo) (*api.Todo, error) {
	resp, err := c.client.SaveTodo(ctx, &api.SaveTodoRequest{Todo: t})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Todo, nil
}

func (c *GRPCClient) DeleteTodo(ctx context.Context, id string) error {
	if _, err := c.client.DeleteTodo(ctx, &api.DeleteTodoRequest{ID: id}); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(ctx, &api.Empty{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// mapError turns a gRPC status into one of the package errors, keeping the
// server's message.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotLoggedIn) || errors.Is(err, ErrUnauthorized) {
		return err
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var kind error
	switch st.Code() {
	case codes.Unauthenticated:
		kind = ErrUnauthorized
	case codes.PermissionDenied:
		kind = ErrForbidden
	case codes.NotFound:
		kind = ErrNotFound
	case codes.AlreadyExists:
		kind = ErrConflict
	case codes.InvalidArgument:
		kind = ErrInvalidInput
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
	return fmt.Errorf("%w: %s", kind, st.Message())
}
