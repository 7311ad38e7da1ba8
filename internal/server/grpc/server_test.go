package grpc

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/sameershelar/toodo/internal/api"
	"github.com/sameershelar/toodo/internal/logging"
	"github.com/sameershelar/toodo/internal/server/models"
	"github.com/sameershelar/toodo/internal/server/services"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAuth struct {
	registerErr error
	refreshErr  error
	refreshed   []string
}

func (f *fakeAuth) Register(_ context.Context, email, _ string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "u-1", Email: email}, nil
}

func (f *fakeAuth) Login(_ context.Context, _, password string) (*services.TokenPair, error) {
	if password != "password1" {
		return nil, services.InvalidCredentials()
	}
	return &services.TokenPair{AccessToken: "good", RefreshToken: "r1"}, nil
}

func (f *fakeAuth) Refresh(_ context.Context, token string) (*services.TokenPair, error) {
	f.refreshed = append(f.refreshed, token)
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{AccessToken: "good", RefreshToken: "r2"}, nil
}

func (f *fakeAuth) Logout(context.Context, string) error { return nil }

func (f *fakeAuth) Authenticate(_ context.Context, token string) (string, error) {
	if token == "Bearer good" {
		return "u-1", nil
	}
	return "", services.Unauthorized(services.MsgInvalidAccess, services.ReasonMalformed, nil)
}

const (
	ownTodoID     = "0b3cbd8e-7f1c-4f7a-9a43-96b0d0a3f0a1"
	othersTodoID  = "5d6f2a40-1c2e-4b8f-8f0e-2f4b7c9d1e3a"
	failingTodoID = "9e8d7c6b-5a49-4382-b1c0-d9e8f7a6b5c4"
)

type fakeTodos struct {
	owners  []string
	items   []*models.Todo
	deleted []string
}

func (f *fakeTodos) Save(_ context.Context, ownerID string, in services.TodoInput) (*models.Todo, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, services.BadRequest("Title cannot be blank")
	}
	f.owners = append(f.owners, ownerID)
	t := &models.Todo{ID: "t-1", OwnerID: ownerID, Title: in.Title, Color: in.Color, CreatedAt: time.Now()}
	f.items = append(f.items, t)
	return t, nil
}

func (f *fakeTodos) List(_ context.Context, ownerID string) ([]*models.Todo, error) {
	f.owners = append(f.owners, ownerID)
	return f.items, nil
}

func (f *fakeTodos) Delete(_ context.Context, _ string, id string) error {
	if id == othersTodoID {
		return services.Forbidden(services.MsgTodoForbidden)
	}
	if id == failingTodoID {
		return services.Internal(assert.AnError)
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type harness struct {
	client api.ToodoClient
	conn   *grpc.ClientConn
	auth   *fakeAuth
	todos  *fakeTodos
}

func startServer(t *testing.T) *harness {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	fa, ft := &fakeAuth{}, &fakeTodos{}
	srv := NewGRPCServer("bufconn", logging.Nop(), fa, ft)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		require.NoError(t, <-done)
	})
	return &harness{client: api.NewToodoClient(conn), conn: conn, auth: fa, todos: ft}
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", token)
}

func TestRegisterAndLogin(t *testing.T) {
	h := startServer(t)

	reg, err := h.client.Register(context.Background(), &api.RegisterRequest{Email: "a@b.co", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", reg.ID)

	tokens, err := h.client.Login(context.Background(), &api.LoginRequest{Email: "a@b.co", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "good", tokens.AccessToken)
	assert.Equal(t, "r1", tokens.RefreshToken)

	_, err = h.client.Login(context.Background(), &api.LoginRequest{Email: "a@b.co", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, services.MsgInvalidCredentials, status.Convert(err).Message())
}

func TestRegisterConflict(t *testing.T) {
	h := startServer(t)
	h.auth.registerErr = services.Conflict(services.MsgEmailTaken)

	_, err := h.client.Register(context.Background(), &api.RegisterRequest{Email: "a@b.co", Password: "password1"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestRefreshToken(t *testing.T) {
	h := startServer(t)

	tokens, err := h.client.RefreshToken(context.Background(), &api.RefreshTokenRequest{RefreshToken: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "r2", tokens.RefreshToken)

	_, err = h.client.RefreshToken(context.Background(), &api.RefreshTokenRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "Refresh token cannot be blank", status.Convert(err).Message())

	h.auth.refreshErr = services.Unauthorized(services.MsgInvalidRefresh, services.ReasonAlreadyConsumed, nil)
	_, err = h.client.RefreshToken(context.Background(), &api.RefreshTokenRequest{RefreshToken: "r1"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, []string{"r1", "r1"}, h.auth.refreshed)
}

func TestProtectedMethodsRequireToken(t *testing.T) {
	h := startServer(t)

	_, err := h.client.ListTodos(context.Background(), &api.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = h.client.ListTodos(withToken("Bearer nope"), &api.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = h.client.Ping(context.Background(), &api.Empty{})
	assert.NoError(t, err)
}

func TestTodoRoundTrip(t *testing.T) {
	h := startServer(t)
	ctx := withToken("Bearer good")

	saved, err := h.client.SaveTodo(ctx, &api.SaveTodoRequest{Todo: &api.Todo{Title: "milk", Color: 2}})
	require.NoError(t, err)
	assert.Equal(t, "t-1", saved.Todo.ID)
	assert.Equal(t, int64(2), saved.Todo.Color)

	list, err := h.client.ListTodos(ctx, &api.Empty{})
	require.NoError(t, err)
	require.Len(t, list.Todos, 1)
	assert.Equal(t, "milk", list.Todos[0].Title)
	assert.Equal(t, []string{"u-1", "u-1"}, h.todos.owners)

	_, err = h.client.SaveTodo(ctx, &api.SaveTodoRequest{Todo: &api.Todo{Title: " "}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "Title cannot be blank", status.Convert(err).Message())

	_, err = h.client.SaveTodo(ctx, &api.SaveTodoRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "Todo cannot be blank", status.Convert(err).Message())

	_, err = h.client.SaveTodo(ctx, &api.SaveTodoRequest{Todo: &api.Todo{ID: "t-1", Title: "milk"}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Len(t, h.todos.items, 1)
}

func TestLogin_DoesNotValidateShape(t *testing.T) {
	h := startServer(t)

	_, err := h.client.Login(context.Background(), &api.LoginRequest{Email: "bob", Password: "password1"})
	require.NoError(t, err)

	_, err = h.client.Login(context.Background(), &api.LoginRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestDeleteTodo(t *testing.T) {
	h := startServer(t)
	ctx := withToken("Bearer good")

	_, err := h.client.DeleteTodo(ctx, &api.DeleteTodoRequest{ID: ownTodoID})
	require.NoError(t, err)
	assert.Equal(t, []string{ownTodoID}, h.todos.deleted)

	_, err = h.client.DeleteTodo(ctx, &api.DeleteTodoRequest{ID: othersTodoID})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = h.client.DeleteTodo(ctx, &api.DeleteTodoRequest{ID: "42"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, "Todo id must be a UUID", status.Convert(err).Message())
	assert.Len(t, h.todos.deleted, 1)

	_, err = h.client.DeleteTodo(ctx, &api.DeleteTodoRequest{ID: failingTodoID})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, services.MsgInternal, status.Convert(err).Message())
}

func TestHealth(t *testing.T) {
	h := startServer(t)

	resp, err := healthpb.NewHealthClient(h.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: api.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), &fakeAuth{}, &fakeTodos{})
	assert.Error(t, srv.Run(context.Background()))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:0", logging.Nop(), &fakeAuth{}, &fakeTodos{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}
