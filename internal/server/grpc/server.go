package grpc

import (
	"context"
	"net"

	"github.com/sameershelar/toodo/internal/api"
	"github.com/sameershelar/toodo/internal/logging"
	"github.com/sameershelar/toodo/internal/server/models"
	"github.com/sameershelar/toodo/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// AuthAPI is the part of the auth service exposed over gRPC.
type AuthAPI interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

// TodoAPI is the part of the todo service exposed over gRPC.
type TodoAPI interface {
	Save(ctx context.Context, ownerID string, in services.TodoInput) (*models.Todo, error)
	List(ctx context.Context, ownerID string) ([]*models.Todo, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type GRPCServer struct {
	address string
	auth    AuthAPI
	todos   TodoAPI
	logger  logging.Logger
	health  *health.Server
}

var _ api.ToodoServer = (*GRPCServer)(nil)

func NewGRPCServer(addr string, l logging.Logger, a AuthAPI, t TodoAPI) *GRPCServer {
	return &GRPCServer{
		address: addr,
		logger:  l.With("module", "grpc_server"),
		auth:    a,
		todos:   t,
		health:  health.NewServer(),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor, s.validationInterceptor))
	api.RegisterToodoServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	serveDone := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			s.logger.Info(context.Background(), "Stopping gRPC server...")
			s.health.Shutdown()
			srv.GracefulStop()
		case <-serveDone:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	err := srv.Serve(lis)
	close(serveDone)
	<-stopped
	if ctx.Err() != nil {
		return nil
	}
	return err
}
